// Package api is the HTTP boundary of the generation service. It validates
// generation requests, hands them to the task engine, and serves task status,
// queue statistics and component health.
package api
