// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package kss provides access to files stored outside of the database. Files are
// never served by the functions themselves, clients fetch them with pre-signed URLs.
package kss

import (
	"context"
	"time"
)

// Method is the HTTP method a pre-signed URL is valid for
type Method string

const (
	// Get presigns a download
	Get Method = "GET"
)

// Object describes a stored file
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Driver defines the interface for the KSS service
type Driver interface {
	ListAllWithPrefix(ctx context.Context, prefix string) ([]Object, error)
	GetPreSignedURL(ctx context.Context, method Method, key string, expireIn time.Duration) (URL string, err error)
}
