/*
Package cipher recovers playable stream URLs from YouTube signature ciphers.

Streams that hide their URL carry a signatureCipher query string holding the
base URL, an encrypted signature and the name of the parameter the decrypted
signature belongs in. Decrypting it means running a small transform defined in
the player script.

# Pipeline

 1. ParseSignatureCipher decodes the cipher string.
 2. Locate finds the decipher function and its helper object in the player
    script using the ordered pattern lists FunctionPatterns and
    HelperCallPattern. Add new script variants there.
 3. Decipherer loads the located Operations into an Engine (otto by
    default, goja as an alternative) and calls the function.
 4. SignatureCipher.SignedURL attaches the result to the base URL.

# Caching

Cache keeps one Decipherer per script identity. Building one runs once per
key under singleflight. With a FileStore, located Operations survive restarts.

# Usage

	cache := cipher.NewCache(cipher.WithMetrics(cipher.NewMetrics(prometheus.DefaultRegisterer)))
	d, err := cache.Get(ctx, playerURL, func(ctx context.Context) (string, error) {
		return fetcher.PlayerScript(ctx, playerURL)
	})
	if err != nil {
		return err
	}
	streamURL, err := d.Resolve(stream.SignatureCipher)

# Errors

Failures are *Error values with a code. They unwrap to the sentinels in
package errs, so errors.Is(err, errs.ErrLocatorNotFound) and friends work.
Engine exceptions and panics never escape a Decipherer.
*/
package cipher
