package frame

import (
	"html/template"
	"io"
)

const frameDocumentHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="fc:frame" content="vNext">
<meta property="fc:frame:image" content="{{.ImageURL}}">
<meta property="fc:frame:image:aspect_ratio" content="1.91:1">
<meta property="fc:frame:input:text" content="{{.InputPlaceholder}}">
<meta property="fc:frame:button:1" content="{{.Button}}">
<meta property="fc:frame:post_url" content="{{.PostURL}}">
</head>
<body>
<img src="{{.ImageURL}}" alt="{{.Title}}" width="600">
</body>
</html>
`

var frameDocumentTemplate = template.Must(template.New("frame").Parse(frameDocumentHTML))

// Document is one frame: an image plus a text input and a single post button.
type Document struct {
	Title            string
	ImageURL         string
	PostURL          string
	Button           string
	InputPlaceholder string
}

// Write renders the frame document as HTML.
func (d Document) Write(w io.Writer) error {
	return frameDocumentTemplate.Execute(w, d)
}

type framePayload struct {
	UntrustedData struct {
		InputText string `json:"inputText"`
	} `json:"untrustedData"`
}
