package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
)

var _ list.Item = videoItem{}

// videoItem wraps [models.VideoRecord] to implement [list.Item].
type videoItem struct {
	video *models.VideoRecord
}

func (i videoItem) FilterValue() string { return i.video.Name() }
func (i videoItem) Title() string       { return i.video.Name() }
func (i videoItem) Description() string {
	return fmt.Sprintf("%s • %s", formatter.FormatSize(i.video.Size()), i.video.CreatedAt().Local().Format("2006-01-02 15:04"))
}

func videoItems(videos []*models.VideoRecord) []list.Item {
	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = videoItem{video: v}
	}
	return items
}
