// Package models defines the records exchanged with the movie favorites service.
//
//   - [Movie] : one catalog entry (movie or TV show) as listed, created and updated by the service
//   - [Image] : a poster file attached client-side and uploaded with a create/update request
//   - [ListResponse], [LoginResponse], [MessageResponse], [DeleteRequest] : JSON envelopes of the HTTP contract
//
// [Movie.Validate] enforces the submission invariant: every field but id and image is required and the duration is
// a positive number of minutes. The image is checked separately because only creation requires one.
package models
