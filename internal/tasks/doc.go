// Package tasks runs long operations over the favorites collection with real-time progress reporting.
//
// # Poster Downloads
//
// [DownloadPosters] fetches the poster of every movie in a slice using a worker pool:
//   - A producer goroutine feeds jobs through a [rate.Limiter]
//   - Workers save each image with [formatter.SavePoster]
//   - Movies without a remote image are skipped, not failed
//   - A manifest.json summarizing every result is written to the output directory
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel.
// Updates use select with default so a slow reader never blocks a worker.
package tasks
