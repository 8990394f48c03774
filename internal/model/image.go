package model

import "time"

type Image struct {
	ID         int64
	UserID     int64
	Name       string
	StorageKey string
	CreatedAt  time.Time
}

type ImageResponse struct {
	ID        int64  `json:"id"`
	ImageName string `json:"image_name"`
	ImageData string `json:"image_data"`
}

type ImageAnalysisResponse struct {
	Histogram        []float64    `json:"histogram"`
	SegmentationMask [][][3]uint8 `json:"segmentation_mask"`
}
