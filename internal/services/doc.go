// Package services implements the HTTP boundary to the movie favorites service.
//
// # API Client
//
// [APIService] performs raw requests against the configured base URL and returns an [APIResponse] carrying the
// status, headers, body and decoded JSON. Two HTTP clients share one transport chain:
//
//   - anonymous: used by /login and /register
//   - authorized: adds "Authorization: Bearer <token>" through an [oauth2.Transport] whose token source reads the
//     [CredentialProvider] on every request, so a login or logout takes effect immediately
//
// # Transport Middleware
//
// [Middleware] wraps an [http.RoundTripper] the same way server middleware wraps handlers: [Chain] applies them in
// reverse so the first listed is the outermost. Built-ins stamp X-Request-ID (uuid v4), log each exchange, and wait
// on a token-bucket [rate.Limiter].
//
// # Catalog
//
// [CatalogService] implements [Catalog] and [Authenticator] on top of [APIService] following the service contract:
//
//	GET  /getAll     bearer   -> {data: Movie[]}
//	POST /login      multipart {email,password,remember} -> {accessToken}
//	POST /register   multipart {name,email,password,confirmPassword}
//	POST /addFav     bearer, multipart {title,type,director,budget,location,duration,time,image}
//	POST /updateFav  bearer, multipart {id,...,image?}
//	POST /deleteFav  bearer, JSON {id}
//
// # Error Handling
//
// A response the service rejected (non-2xx) becomes an [*APIError] carrying the status and the body's "message".
// Everything else (dial failures, unreadable or malformed bodies, missing token) is wrapped in
// [shared.ErrAPIRequest]; [IsRejection] tells the two apart.
package services
