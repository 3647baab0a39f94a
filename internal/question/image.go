// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package question

import (
	"encoding/base64"
	"fmt"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

// ImageAnalyzer extracts metadata from a base64-encoded image attached to
// a question.
type ImageAnalyzer interface {
	Analyze(payload string) (*types.ImageInfo, error)
}

// LengthAnalyzer decodes the payload and reports its size. It does not
// look at the image contents.
type LengthAnalyzer struct{}

// Analyze implements ImageAnalyzer.
func (LengthAnalyzer) Analyze(payload string) (*types.ImageInfo, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &types.ImageInfo{
		SizeBytes: len(data),
		Format:    "base64_decoded",
		Note:      "Image received but detailed processing not available",
	}, nil
}
