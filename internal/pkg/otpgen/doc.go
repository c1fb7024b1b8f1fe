// Package otpgen generates random numeric one-time codes.
//
// Unlike TOTP, codes here carry no embedded time window: the caller stores the
// code (hashed) and decides its lifetime. The randomness source is injectable
// so callers can test collision handling deterministically.
package otpgen
