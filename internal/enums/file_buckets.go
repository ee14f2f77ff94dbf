package enums

const (
	FILE_BUCKET_CANVAS_IMAGES = "canvas-images"
)
