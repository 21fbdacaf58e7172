package resources

import (
	"embed"

	"fyne.io/fyne/v2"
)

//go:embed icons/app_64.png
var iconData []byte

func GetAppIcon() fyne.Resource {
	return &fyne.StaticResource{
		StaticName:    "app_64.png",
		StaticContent: iconData,
	}
}

// LabelFiles holds the bundled class-label definitions.
//
//go:embed labels/*.yaml
var LabelFiles embed.FS
