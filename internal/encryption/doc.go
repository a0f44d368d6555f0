// Package encryption derives cipher keys from a password and encrypts or decrypts
// streams and whole file trees with AES or TripleDES in ECB or CBC mode, PKCS5-padded.
//
// Keys and IVs are a deterministic function of the password: nothing besides the
// password needs to be kept to decrypt.
package encryption
