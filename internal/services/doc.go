// Package services implements the HTTP client for the creator content backend.
//
// # Results
//
// Calls never return bare errors. Each outcome is classified into a [Result]:
//   - [KindSuccess] : 2xx status with a decodable body
//   - [KindError] : any other status, with the backend's detail message when present
//   - [KindException] : transport or decoding failure
//
// Handlers chain on the value, so a caller reacts only to the outcomes it cares about:
//
//	svc.GetContents(ctx, "DRAFT").
//		OnSuccess(func(r models.ContentResponse) { ... }).
//		OnError(func(code int, msg string) { ... }).
//		OnException(func(err error) { ... })
//
// # Transport
//
// [ContentService] paces requests with a [rate.Limiter], retries transport failures
// (never HTTP statuses) and attaches a bearer token through [oauth2.Transport] when one is configured.
// Round trips are logged at debug level.
package services
