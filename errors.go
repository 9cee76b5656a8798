package assetpack

import "errors"

var (
	ErrInvalidPath     = errors.New("assetpack: invalid path")
	ErrInvalidURL      = errors.New("assetpack: invalid url")
	ErrWildcardURL     = errors.New("assetpack: wildcard path needs a directory url")
	ErrDuplicateBundle = errors.New("assetpack: duplicate bundle")
	ErrNotFound        = errors.New("assetpack: not found")
	ErrLimitExceeded   = errors.New("assetpack: limit exceeded")
	ErrMinify          = errors.New("assetpack: minify failed")
	ErrInvalidSnapshot = errors.New("assetpack: invalid snapshot")
	ErrInvalidConfig   = errors.New("assetpack: invalid config")
)
