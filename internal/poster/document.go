// File: internal/poster/document.go
package poster

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// The posting endpoint does not accept plain text; the article body travels
// as a serialized rich-text editor document embedded in the request. These
// types model the subset of that document the client produces: an optional
// leading image followed by text paragraphs.

const (
	documentVersion  = "2.8.8"
	documentTheme    = "default"
	documentLanguage = "ko-KR"
)

type editorDocument struct {
	Document documentBody `json:"document"`
	// DocumentID stays empty on creation; the server assigns one.
	DocumentID string `json:"documentId"`
}

type documentBody struct {
	Version    string        `json:"version"`
	Theme      string        `json:"theme"`
	Language   string        `json:"language"`
	ID         string        `json:"id"`
	Components []interface{} `json:"components"`
}

type textComponent struct {
	ID     string      `json:"id"`
	Layout string      `json:"layout"`
	Value  []paragraph `json:"value"`
	CType  string      `json:"@ctype"`
}

type paragraph struct {
	ID    string     `json:"id"`
	Nodes []textNode `json:"nodes"`
	CType string     `json:"@ctype"`
}

type textNode struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	CType string `json:"@ctype"`
}

type imageComponent struct {
	ID               string      `json:"id"`
	Layout           string      `json:"layout"`
	Src              string      `json:"src"`
	InternalResource bool        `json:"internalResource"`
	Represent        bool        `json:"represent"`
	Path             string      `json:"path"`
	Domain           string      `json:"domain"`
	FileSize         int64       `json:"fileSize"`
	Width            int         `json:"width"`
	Height           int         `json:"height"`
	FileName         string      `json:"fileName"`
	Format           string      `json:"format"`
	DisplayFormat    string      `json:"displayFormat"`
	ImageLoaded      bool        `json:"imageLoaded"`
	ContentMode      string      `json:"contentMode"`
	Origin           imageOrigin `json:"origin"`
	AI               bool        `json:"ai"`
	CType            string      `json:"@ctype"`
}

type imageOrigin struct {
	SrcFrom string `json:"srcFrom"`
	CType   string `json:"@ctype"`
}

// newComponentID mints an editor element id. The editor expects the SE-
// prefix; the remainder only has to be unique within the document.
func newComponentID() string {
	return "SE-" + uuid.NewString()
}

// BuildDocument serializes the article body into the editor document format.
// Each line of content becomes its own paragraph; an attached image is
// rendered as the leading component.
func BuildDocument(content string, image *ImageAttachment) (string, error) {
	var components []interface{}

	if image != nil {
		components = append(components, imageComponent{
			ID:               newComponentID(),
			Layout:           "default",
			Src:              image.URL,
			InternalResource: true,
			Represent:        true,
			Path:             image.Path,
			Domain:           image.Domain,
			FileSize:         image.FileSize,
			Width:            image.Width,
			Height:           image.Height,
			FileName:         image.FileName,
			Format:           "normal",
			DisplayFormat:    "normal",
			ImageLoaded:      true,
			ContentMode:      "extend",
			Origin:           imageOrigin{SrcFrom: "local", CType: "imageOrigin"},
			CType:            "image",
		})
	}

	var paragraphs []paragraph
	for _, line := range strings.Split(content, "\n") {
		paragraphs = append(paragraphs, paragraph{
			ID: newComponentID(),
			Nodes: []textNode{{
				ID:    newComponentID(),
				Value: line,
				CType: "textNode",
			}},
			CType: "paragraph",
		})
	}
	components = append(components, textComponent{
		ID:     newComponentID(),
		Layout: "default",
		Value:  paragraphs,
		CType:  "text",
	})

	doc := editorDocument{
		Document: documentBody{
			Version:    documentVersion,
			Theme:      documentTheme,
			Language:   documentLanguage,
			ID:         uuid.NewString(),
			Components: components,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to serialize editor document: %w", err)
	}
	return string(data), nil
}
