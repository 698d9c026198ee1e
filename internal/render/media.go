package render

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"inkwell/api/internal/block"
)

func editImage(b block.Block) string {
	d := payload[*block.ImageData](b)
	out := attrInput("imageUrl", b.ImageURL, "Upload or paste an image URL")
	if b.ImageURL != "" {
		out += fmt.Sprintf("<img class=\"thumb\" src=\"%s\" alt=\"%s\">\n", esc(safeURL(b.ImageURL)), esc(d.Alt))
	}
	return out + attrInput(field("alt"), d.Alt, "Alt text") +
		textInput(field("caption"), d.Caption, "Caption") +
		selectInput(field("width"), d.Width, []string{"full", "wide", "normal", "small"})
}

func showImage(b block.Block) string {
	d := payload[*block.ImageData](b)
	if b.ImageURL == "" {
		return "<div class=\"image-placeholder\">No image</div>\n" + showIf("p", "caption", field("caption"), d.Caption)
	}
	return fmt.Sprintf("<figure class=\"image image-%s\">\n<img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n%s</figure>\n",
		esc(d.Width), esc(safeURL(b.ImageURL)), esc(d.Alt), showIf("figcaption", "", field("caption"), d.Caption))
}

func editVideo(b block.Block) string {
	d := payload[*block.VideoData](b)
	return attrInput(field("url"), d.URL, "Upload or paste a video URL") +
		textInput(field("caption"), d.Caption, "Caption")
}

func showVideo(b block.Block) string {
	d := payload[*block.VideoData](b)
	player := "<div class=\"video-placeholder\">No video</div>\n"
	if d.URL != "" {
		player = fmt.Sprintf("<video controls preload=\"metadata\" src=\"%s\"></video>\n", esc(safeURL(d.URL)))
	}
	return "<figure class=\"video\">\n" + player + showIf("figcaption", "", field("caption"), d.Caption) + "</figure>\n"
}

func editAudio(b block.Block) string {
	d := payload[*block.AudioData](b)
	return textInput("content", b.Content, "Title") + attrInput(field("url"), d.URL, "Upload or paste an audio URL")
}

func showAudio(b block.Block) string {
	d := payload[*block.AudioData](b)
	player := ""
	if d.URL != "" {
		player = fmt.Sprintf("<audio controls preload=\"none\" src=\"%s\"></audio>\n", esc(safeURL(d.URL)))
	}
	return "<div class=\"audio\">\n" + showIf("p", "title", "content", b.Content) + player + "</div>\n"
}

func editFile(b block.Block) string {
	d := payload[*block.FileData](b)
	out := attrInput(field("url"), d.URL, "Upload a file") + textInput(field("fileName"), d.FileName, "File name")
	if d.FileSize > 0 {
		out += fmt.Sprintf("<span class=\"file-size\">%s</span>\n", humanize.Bytes(uint64(d.FileSize)))
	}
	return out
}

func showFile(b block.Block) string {
	d := payload[*block.FileData](b)
	size := ""
	if d.FileSize > 0 {
		size = fmt.Sprintf("<span class=\"file-size\">%s</span>\n", humanize.Bytes(uint64(d.FileSize)))
	}
	if d.FileName == "" {
		return fmt.Sprintf("<a class=\"file\" href=\"%s\" download>Download file</a>\n%s", esc(safeURL(d.URL)), size)
	}
	return fmt.Sprintf("<a class=\"file\" href=\"%s\" download data-field=\"%s\">%s</a>\n%s",
		esc(safeURL(d.URL)), field("fileName"), esc(d.FileName), size)
}

func editPDF(b block.Block) string {
	d := payload[*block.PDFData](b)
	return textInput("content", b.Content, "Title") +
		attrInput(field("url"), d.URL, "Upload a PDF") +
		numberInput(field("height"), float64(d.Height))
}

func showPDF(b block.Block) string {
	d := payload[*block.PDFData](b)
	viewer := "<div class=\"pdf-placeholder\">No document</div>\n"
	if d.URL != "" {
		viewer = fmt.Sprintf("<iframe class=\"pdf\" src=\"%s\" height=\"%d\" title=\"%s\"></iframe>\n", esc(safeURL(d.URL)), d.Height, esc(b.Content))
	}
	return showIf("p", "title", "content", b.Content) + viewer
}
