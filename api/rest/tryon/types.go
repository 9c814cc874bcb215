package tryon

import (
	"context"

	"codeberg.org/iburba/server/iburba/tryon"
)

// runs a try-on for a raw Authorization value
type Submitter interface {
	SubmitTryon(ctx context.Context, credential string, req tryon.Request) *tryon.Result
}

// TryonRequest is the body of POST /api/v1/virtual-tryon
// images are base64 strings or data URLs
type TryonRequest struct {
	PersonImage      string `json:"person_image"`
	GarmentImage     string `json:"garment_image"`
	Category         string `json:"category,omitempty" binding:"omitempty,oneof=auto tops bottoms one-pieces"`
	Mode             string `json:"mode,omitempty" binding:"omitempty,oneof=performance balanced quality"`
	Seed             *int   `json:"seed,omitempty" binding:"omitempty,min=0"`
	NumSamples       int    `json:"num_samples,omitempty" binding:"omitempty,min=1,max=4"`
	SegmentationFree *bool  `json:"segmentation_free,omitempty"`
	ModerationLevel  string `json:"moderation_level,omitempty" binding:"omitempty,oneof=conservative permissive none"`
}

func (r TryonRequest) toDomain() tryon.Request {
	return tryon.Request{
		PersonImage:      r.PersonImage,
		GarmentImage:     r.GarmentImage,
		Category:         r.Category,
		Mode:             r.Mode,
		Seed:             r.Seed,
		NumSamples:       r.NumSamples,
		SegmentationFree: r.SegmentationFree,
		ModerationLevel:  r.ModerationLevel,
	}
}
