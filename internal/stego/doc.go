// Package stego hides byte payloads in the two least significant bits of the red,
// green and blue channels of 640x480 carrier images, and spreads payloads that are
// larger than one image over as many carriers as needed.
//
// Pixels are visited column by column (x outer, y inner), channels in R, G, B order,
// and payload bits are consumed most significant bit first. Carriers must be stored
// losslessly; see DirStore.
package stego
