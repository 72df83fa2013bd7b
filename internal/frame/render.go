package frame

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"coinFrame/internal/model"
)

const (
	// ImageWidth and ImageHeight match the 1.91:1 frame aspect ratio.
	ImageWidth  = 1200
	ImageHeight = 630

	// Text is drawn with a 7x13 bitmap face on a quarter-size canvas, then scaled up.
	canvasScale  = 4
	canvasMargin = 12
	lineHeight   = 18
)

var (
	colorBackground = color.RGBA{R: 0x17, G: 0x10, B: 0x2b, A: 0xff}
	colorTitle      = color.RGBA{R: 0xa3, G: 0x6e, B: 0xfd, A: 0xff}
	colorLabel      = color.RGBA{R: 0xb8, G: 0xb3, B: 0xc9, A: 0xff}
	colorValue      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorError      = color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}
)

type cardRow struct {
	label string
	value string
}

type card struct {
	title      string
	titleColor color.Color
	rows       []cardRow
	message    string
	footer     string
}

// statsCard lays out resolved stats, values in the reference asset unit.
func statsCard(stats model.CoinStats, unit string) card {
	return card{
		title:      "$" + stats.Symbol,
		titleColor: colorTitle,
		rows: []cardRow{
			{label: "Price", value: FormatPrice(stats.Price) + " " + unit},
			{label: "Market cap", value: FormatAmount(stats.MarketCap) + " " + unit},
			{label: "Liquidity", value: FormatAmount(stats.Liquidity) + " " + unit},
			{label: "24h volume (est.)", value: FormatAmount(stats.Volume24h) + " " + unit},
			{label: "Holders", value: FormatCount(stats.HolderCount)},
		},
		footer: "pool " + shortAddress(stats.Pool),
	}
}

// messageCard shows a single message, used for the prompt and for failures.
func messageCard(title, message string, isError bool) card {
	c := card{title: title, titleColor: colorTitle, message: message}
	if isError {
		c.titleColor = colorError
	}
	return c
}

// WritePNG rasterises the card at ImageWidth x ImageHeight.
func (c card) WritePNG(w io.Writer) error {
	canvas := image.NewRGBA(image.Rect(0, 0, ImageWidth/canvasScale, ImageHeight/canvasScale))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	width := canvas.Bounds().Dx()
	y := canvasMargin + 10
	drawText(canvas, c.title, canvasMargin, y, c.titleColor)
	y += lineHeight + 8

	if c.message != "" {
		drawText(canvas, c.message, canvasMargin, y, colorValue)
	}
	for _, row := range c.rows {
		drawText(canvas, row.label, canvasMargin, y, colorLabel)
		valueWidth := measureText(row.value)
		drawText(canvas, row.value, width-canvasMargin-valueWidth, y, colorValue)
		y += lineHeight
	}
	if c.footer != "" {
		drawText(canvas, c.footer, canvasMargin, canvas.Bounds().Dy()-canvasMargin+4, colorLabel)
	}

	out := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	scaled := image.Rect(0, 0, canvas.Bounds().Dx()*canvasScale, canvas.Bounds().Dy()*canvasScale)
	draw.NearestNeighbor.Scale(out, scaled, canvas, canvas.Bounds(), draw.Src, nil)

	return png.Encode(w, out)
}

func drawText(dst draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func measureText(text string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(text).Ceil()
}

func shortAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}
