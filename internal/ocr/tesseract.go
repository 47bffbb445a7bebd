package ocr

import (
	"context"
	"strconv"
	"strings"
)

// Word is one recognized word from tesseract's TSV output, in image pixels.
type Word struct {
	Left, Top     int
	Width, Height int
	Conf          float64
	Text          string
}

// Text runs tesseract on a single image and returns the raw recognized text.
func (e *Engine) Text(ctx context.Context, image string) (string, error) {
	// tesseract <img> stdout -l <lang> --oem 3 --psm 6
	args := e.baseArgs(image)
	out, err := e.run(ctx, "tesseract", e.cfg.Tesseract, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Words runs tesseract in TSV mode and returns the word-level boxes that carry text.
func (e *Engine) Words(ctx context.Context, image string) ([]Word, error) {
	args := append(e.baseArgs(image), "tsv")
	out, err := e.run(ctx, "tesseract TSV", e.cfg.Tesseract, args...)
	if err != nil {
		return nil, err
	}
	return ParseTSV(string(out)), nil
}

func (e *Engine) baseArgs(image string) []string {
	args := []string{image, "stdout", "-l", e.cfg.TesseractLang,
		"--oem", strconv.Itoa(e.cfg.OEM), "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

// ParseTSV decodes tesseract TSV output. Rows without text (page, block,
// paragraph and line records) are skipped.
func ParseTSV(tsv string) []Word {
	var words []Word
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue // header
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 {
			continue
		}
		text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
		if text == "" {
			continue
		}
		left, err1 := strconv.Atoi(cols[6])
		top, err2 := strconv.Atoi(cols[7])
		if err1 != nil || err2 != nil {
			continue
		}
		w := Word{Left: left, Top: top, Text: text}
		w.Width, _ = strconv.Atoi(cols[8])
		w.Height, _ = strconv.Atoi(cols[9])
		w.Conf, _ = strconv.ParseFloat(cols[10], 64)
		words = append(words, w)
	}
	return words
}
