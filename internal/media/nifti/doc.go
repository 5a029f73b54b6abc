// Package nifti detects the NIfTI format version of an image file from its
// first header bytes.
//
// The on-disk layout, not the file extension, is authoritative: the first
// four bytes hold sizeof_hdr (348 for NIfTI-1, 540 for NIfTI-2) in either
// byte order. Compressed files are read through one gzip member. Every read
// or decode failure resolves to Undetermined so a damaged file never aborts
// a conversion.
package nifti
