// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the interfaces used by the
// task engine and the HTTP layer: generators, the text model, the image
// renderer, the task record store, the status cache and the token service.
// Each mock exposes ...Fn hooks for custom behavior and records its calls.
//
// Usage:
//
//	recordStore := mocks.NewMockRecordStore()
//	gen := &mocks.MockGenerator{
//	    GenerateFn: func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error) {
//	        return nil, errors.New("boom")
//	    },
//	}
package mocks
