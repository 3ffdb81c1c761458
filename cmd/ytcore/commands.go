package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/envelope"
	"github.com/ytget/ytcore/youtube/formats"
)

var flagTable bool

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Print video details with resolved stream URLs",
	Args:  cobra.ExactArgs(1),
	RunE:  infoRun,
}

var urlCmd = &cobra.Command{
	Use:   "url <url> <itag>",
	Short: "Print the resolved URL and a suggested filename for one stream",
	Args:  cobra.ExactArgs(2),
	RunE:  urlRun,
}

var selectCmd = &cobra.Command{
	Use:   "select <url> [spec]",
	Short: "Pick one stream with a filter spec",
	Long: `Pick one stream with a comma-separated key:value filter spec.

Keys: res (best|worst|<height>), bitrate (best|worst), abr/audio_br (best|worst),
type (any|video|audio|muxed), fps, vcodec, acodec.

Example: ytcore select https://youtu.be/dQw4w9WgXcQ res:best,type:video,vcodec:avc1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: selectRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ytcore", Version)
	},
}

func init() {
	infoCmd.Flags().BoolVarP(&flagTable, "table", "t", false, "print a stream table instead of JSON")
}

func infoRun(cmd *cobra.Command, args []string) error {
	if !flagTable {
		return emit(cmd.OutOrStdout(), session.VideoInfoJSON(cmd.Context(), args[0]))
	}
	d, report, err := session.VideoDetails(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	writeTable(cmd.OutOrStdout(), d, report)
	return nil
}

func urlRun(cmd *cobra.Command, args []string) error {
	itag, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid itag %q", args[1])
	}
	return emit(cmd.OutOrStdout(), session.StreamURLJSON(cmd.Context(), args[0], itag))
}

func selectRun(cmd *cobra.Command, args []string) error {
	spec := ""
	if len(args) > 1 {
		spec = args[1]
	}
	res, err := session.Query(cmd.Context(), args[0], spec)
	if err != nil {
		return emit(cmd.OutOrStdout(), envelope.Fail(err).JSON())
	}
	for _, msg := range res.Ignored {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
	}
	if !res.Found {
		return emit(cmd.OutOrStdout(), envelope.Fail(fmt.Errorf("no stream matches %q", spec)).JSON())
	}
	return emit(cmd.OutOrStdout(), envelope.OK(envelope.NewStream(res.Stream)).JSON())
}

// emit prints an envelope and turns a failed one into errReported so the
// exit status reflects it.
func emit(w io.Writer, out string) error {
	fmt.Fprintln(w, out)
	var probe struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil || !probe.Success {
		return errReported
	}
	return nil
}

func writeTable(w io.Writer, d *types.VideoDetails, report *types.ResolveReport) {
	fmt.Fprintf(w, "%s\n%s · %ds\n\n", d.Title, d.Author, d.LengthSeconds)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITAG\tKIND\tQUALITY\tMIME\tCODECS\tBITRATE\tSIZE\tNOTE")
	unverified := make(map[int]bool, len(report.Unverified))
	for _, itag := range report.Unverified {
		unverified[itag] = true
	}
	for _, s := range formats.AllStreams(d, false) {
		note := ""
		if unverified[s.Itag] {
			note = "unverified"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Itag, kind(s), formats.QualityLabel(s), formats.ParseMimeType(s.MimeType).Base(),
			s.Codecs, humanBits(s.Bitrate), humanSize(s), note)
	}
	failed := make([]int, 0, len(report.Failed))
	for itag := range report.Failed {
		failed = append(failed, itag)
	}
	sort.Ints(failed)
	for _, itag := range failed {
		fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t-\tskipped: %s\n", itag, report.Failed[itag])
	}
	_ = tw.Flush()
}

func kind(s types.MediaStream) string {
	switch {
	case s.Muxed():
		return "muxed"
	case s.IsAudioOnly:
		return "audio"
	default:
		return "video"
	}
}

func humanBits(bps int64) string {
	switch {
	case bps >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(bps)/1_000_000)
	case bps >= 1_000:
		return fmt.Sprintf("%dk", bps/1_000)
	}
	return strconv.FormatInt(bps, 10)
}

func humanSize(s types.MediaStream) string {
	if s.ContentLength == nil {
		return "-"
	}
	const unit = 1024
	n := float64(*s.ContentLength)
	suffixes := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for n >= unit && i < len(suffixes)-1 {
		n /= unit
		i++
	}
	out := strconv.FormatFloat(n, 'f', 1, 64) + suffixes[i]
	if i == 0 {
		out = strconv.FormatInt(*s.ContentLength, 10) + "B"
	}
	if s.ContentLengthEstimated {
		out = "~" + out
	}
	return out
}
