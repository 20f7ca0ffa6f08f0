// Package image1bpp provides a 1-bit monochrome image format matching the
// framebuffer layout of e-paper controllers.
//
// Pixels are stored row-major, 8 pixels per byte. Bit 7 of each byte is the
// leftmost pixel of its 8-pixel group. A set bit is white, a cleared bit is
// black. Rows are padded to a whole byte.
//
// Memory layout example for a 16-pixel row:
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9 ...
//	Values: W B B B B B B W | B ...
//	Bytes:  0x81            | 0x00 ...
//
// The color type is image1bit.Bit from periph.io, so images interoperate with
// the periph display drivers:
//
//	img := image1bpp.NewHorizontalMSB(image.Rect(0, 0, 800, 480))
//	draw.Draw(img, img.Bounds(), &image.Uniform{image1bit.On}, image.Point{}, draw.Src)
//	img.SetBit(10, 20, image1bit.Off)
package image1bpp
