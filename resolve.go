package ytcore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytcore/types"
	"github.com/ytget/ytcore/youtube/cipher"
)

// VideoDetails fetches videoURL and resolves its stream URLs. Streams that
// could not be resolved are left out and listed in the report.
func (s *Session) VideoDetails(ctx context.Context, videoURL string) (*types.VideoDetails, *types.ResolveReport, error) {
	doc, err := s.Fetch(ctx, videoURL)
	if err != nil {
		return nil, nil, err
	}
	return s.Resolve(ctx, doc)
}

// Resolve turns every pending stream of doc into a stream with a URL.
//
// Ciphers are deciphered with the decipherer cached for the document's
// player script. Without a usable script the URL embedded in the cipher is
// used as a best effort and the stream is marked unverified. A failing
// stream never stops the others; only context cancellation aborts.
func (s *Session) Resolve(ctx context.Context, doc *Document) (*types.VideoDetails, *types.ResolveReport, error) {
	report := &types.ResolveReport{ScriptURL: doc.ScriptURL}
	d := doc.Details

	var pending int
	for _, list := range [][]types.MediaStream{d.Formats, d.AdaptiveFormats} {
		for _, st := range list {
			if st.Pending() {
				pending++
			}
		}
	}
	if pending == 0 {
		return d, report, nil
	}

	log := s.log().With(map[string]interface{}{"video_id": doc.VideoID})
	dec, decErr := s.decipherer(ctx, doc.ScriptURL)
	if decErr != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.Warn("Deciphering unavailable", map[string]interface{}{"error": decErr.Error(), "pending": pending})
	}

	formats, err := s.resolveList(ctx, d.Formats, dec, decErr, report)
	if err != nil {
		return nil, nil, err
	}
	adaptive, err := s.resolveList(ctx, d.AdaptiveFormats, dec, decErr, report)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("Resolved streams", map[string]interface{}{
		"deciphered": len(report.Deciphered),
		"unverified": len(report.Unverified),
		"failed":     len(report.Failed),
	})
	return d.WithStreams(formats, adaptive), report, nil
}

func (s *Session) decipherer(ctx context.Context, scriptURL string) (*cipher.Decipherer, error) {
	if scriptURL == "" {
		return nil, cipher.NewError(cipher.ErrCodePlayerJSNotFound, "player script reference not found in page")
	}
	return s.cache.Get(ctx, scriptURL, func(ctx context.Context) (string, error) {
		script, err := s.fetcher.PlayerScript(ctx, scriptURL)
		if err != nil {
			return "", cipher.NewError(cipher.ErrCodePlayerJSDownload, "player script download failed", err.Error())
		}
		return script, nil
	})
}

type outcome struct {
	stream     types.MediaStream
	ok         bool
	unverified bool
	reason     string
}

// resolveList resolves the pending streams of one list in parallel and
// returns the list without the failures, in input order.
func (s *Session) resolveList(ctx context.Context, list []types.MediaStream, dec *cipher.Decipherer, decErr error, report *types.ResolveReport) ([]types.MediaStream, error) {
	results := make([]outcome, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, st := range list {
		if !st.Pending() {
			results[i] = outcome{stream: st, ok: true}
			continue
		}
		i, st := i, st
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = resolveStream(st, dec, decErr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.MediaStream, 0, len(list))
	for i, r := range results {
		switch {
		case !r.ok:
			report.Fail(list[i].Itag, r.reason)
			continue
		case r.unverified:
			report.Unverified = append(report.Unverified, r.stream.Itag)
		case list[i].Pending():
			report.Deciphered = append(report.Deciphered, r.stream.Itag)
		}
		out = append(out, r.stream)
	}
	return out, nil
}

func resolveStream(st types.MediaStream, dec *cipher.Decipherer, decErr error) outcome {
	if _, err := cipher.ParseSignatureCipher(st.SignatureCipher); err != nil {
		return outcome{reason: err.Error()}
	}
	if dec != nil {
		u, err := dec.Resolve(st.SignatureCipher)
		if err == nil {
			st.URL = u
			st.SignatureCipher = ""
			return outcome{stream: st, ok: true}
		}
		decErr = err
	}
	if u, ok := cipher.EmbeddedURL(st.SignatureCipher); ok && u != "" {
		st.URL = u
		st.SignatureCipher = ""
		return outcome{stream: st, ok: true, unverified: true}
	}
	reason := "no player script"
	if decErr != nil {
		reason = decErr.Error()
	}
	return outcome{reason: reason}
}
