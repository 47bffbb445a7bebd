package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/ocr"
)

type fakeRunner struct {
	calls [][]string
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run == nil {
		return nil, nil, nil
	}
	return f.run(name, args)
}

func newEngine(r ocr.Runner) *ocr.Engine {
	return ocr.NewEngine(ocr.Config{}, nil).WithRunner(r)
}

// stubReader is a scripted DocumentReader.
type stubReader struct {
	method  constants.Method
	pages   []string
	tables  [][]Table
	openErr error
	pageErr map[int]error
	panicOn int
	closed  int
}

func (s *stubReader) Method() constants.Method { return s.method }

func (s *stubReader) Open(context.Context, Source) (Document, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &stubDocument{r: s}, nil
}

type stubDocument struct{ r *stubReader }

func (d *stubDocument) PageCount() int { return len(d.r.pages) }

func (d *stubDocument) PageText(_ context.Context, i int) (string, error) {
	if d.r.panicOn == i+1 {
		panic("corrupt page tree")
	}
	if err := d.r.pageErr[i]; err != nil {
		return "", err
	}
	return d.r.pages[i], nil
}

func (d *stubDocument) PageTables(_ context.Context, i int) ([]Table, error) {
	if i < len(d.r.tables) {
		return d.r.tables[i], nil
	}
	return nil, nil
}

func (d *stubDocument) Close() error {
	d.r.closed++
	return nil
}

func TestExtract_JoinsNonEmptyPages(t *testing.T) {
	r := &stubReader{
		method: constants.MethodEmbedded,
		pages:  []string{"first", "", "   ", "last"},
		tables: [][]Table{
			{NewTable([][]string{{"a", "b"}, {"c", "d"}}), {}},
			nil,
			nil,
			{NewTable([][]string{{"x", "y"}})},
		},
	}
	res := Extract(context.Background(), r, FromBytes("bill.pdf", nil))

	require.False(t, res.Failed())
	assert.Equal(t, "first\nlast\n", res.Text)
	assert.Len(t, res.Tables, 2)
	assert.Equal(t, len(res.Tables), res.TableCount)
	assert.GreaterOrEqual(t, res.ProcessingTime, 0.0)
	assert.Equal(t, 1, r.closed)
}

func TestExtract_OpenError(t *testing.T) {
	r := &stubReader{method: constants.MethodLayout, openErr: errors.New("no such file")}
	res := Extract(context.Background(), r, FromPath("missing.pdf"))

	require.True(t, res.Failed())
	assert.Equal(t, FailureOpen, res.Failure.Kind)
	assert.Equal(t, "no such file", res.ErrorMessage())
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Tables)
	assert.Zero(t, res.TableCount)
}

func TestExtract_PageErrorDiscardsPartialOutput(t *testing.T) {
	r := &stubReader{
		method:  constants.MethodEmbedded,
		pages:   []string{"one", "two"},
		pageErr: map[int]error{1: errors.New("bad stream")},
	}
	res := Extract(context.Background(), r, FromBytes("bill.pdf", nil))

	require.True(t, res.Failed())
	assert.Equal(t, FailurePage, res.Failure.Kind)
	assert.Contains(t, res.ErrorMessage(), "page 2")
	assert.Contains(t, res.ErrorMessage(), "bad stream")
	assert.Empty(t, res.Text)
	assert.Equal(t, 1, r.closed)
}

func TestExtract_RecoversPanic(t *testing.T) {
	r := &stubReader{method: constants.MethodEmbedded, pages: []string{"one"}, panicOn: 1}
	res := Extract(context.Background(), r, FromBytes("bill.pdf", nil))

	require.True(t, res.Failed())
	assert.Equal(t, FailurePanic, res.Failure.Kind)
	assert.Equal(t, "corrupt page tree", res.ErrorMessage())
	assert.Equal(t, constants.MethodEmbedded, res.Method)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubReader{method: constants.MethodOCR, pages: []string{"one"}}
	res := Extract(ctx, r, FromBytes("bill.pdf", nil))

	require.True(t, res.Failed())
	assert.Equal(t, FailureBackend, res.Failure.Kind)
}

func TestContentReader_TextAndTables(t *testing.T) {
	data := buildPDF(t, billPages()...)
	res := Extract(context.Background(), NewContentReader(), FromBytes("bill.pdf", data))

	require.False(t, res.Failed(), res.ErrorMessage())
	assert.Equal(t, constants.MethodEmbedded, res.Method)
	for _, want := range []string{"Factura E.ON", "Energie activa", "Total de plata 133.88 RON", "Multumim"} {
		assert.Contains(t, res.Text, want)
	}
	require.Equal(t, 1, res.TableCount)
	assert.Equal(t, [][]string{
		{"Energie activa", "250 kWh", "112.50"},
		{"TVA", "19%", "21.38"},
	}, res.Tables[0].Rows)
}

func TestContentReader_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factura.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, billPages()...), 0o600))

	res := Extract(context.Background(), NewContentReader(), FromPath(path))
	require.False(t, res.Failed(), res.ErrorMessage())
	assert.Contains(t, res.Text, "Factura E.ON")
}

func TestContentReader_NotAPDF(t *testing.T) {
	res := Extract(context.Background(), NewContentReader(), FromBytes("notes.pdf", []byte(strings.Repeat("plain text ", 20))))

	require.True(t, res.Failed())
	assert.Equal(t, FailureOpen, res.Failure.Kind)
	assert.Zero(t, res.TableCount)
}

func TestStrategies_NonexistentPath(t *testing.T) {
	runner := &fakeRunner{}
	engine := newEngine(runner)
	src := FromPath(filepath.Join(t.TempDir(), "nope.pdf"))

	for _, r := range []DocumentReader{NewLayoutReader(engine), NewContentReader(), NewOCRReader(engine)} {
		res := Extract(context.Background(), r, src)
		require.True(t, res.Failed(), r.Method())
		assert.Equal(t, FailureOpen, res.Failure.Kind)
		assert.Empty(t, res.Text)
		assert.Zero(t, res.TableCount)
	}
	assert.Empty(t, runner.calls)
}

const layoutOutput = "Factura E.ON\n\n" +
	"Energie activa    250 kWh    112.50\n" +
	"TVA               19%        21.38\n\n" +
	"Total de plata 133.88 RON\n\f" +
	"Multumim\n\f"

func TestLayoutReader_TextAndTables(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return []byte(layoutOutput), nil, nil
	}}
	res := Extract(context.Background(), NewLayoutReader(newEngine(runner)), FromBytes("bill.pdf", []byte("%PDF-1.4")))

	require.False(t, res.Failed(), res.ErrorMessage())
	assert.Equal(t, constants.MethodLayout, res.Method)
	assert.Equal(t, strings.Split(layoutOutput, "\f")[0]+"\n"+"Multumim\n\n", res.Text)
	require.Equal(t, 1, res.TableCount)
	assert.Equal(t, [][]string{
		{"Energie activa", "250 kWh", "112.50"},
		{"TVA", "19%", "21.38"},
	}, res.Tables[0].Rows)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pdftotext", runner.calls[0][0])
}

func TestLayoutReader_ToolFailure(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	}}
	res := Extract(context.Background(), NewLayoutReader(newEngine(runner)), FromBytes("bill.pdf", []byte("junk")))

	require.True(t, res.Failed())
	assert.Equal(t, FailureBackend, res.Failure.Kind)
	assert.Contains(t, res.ErrorMessage(), "trailer dictionary")
}

const ocrTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"5\t1\t1\t1\t1\t1\t100\t101\t90\t20\t95.0\tEnergie\n" +
	"5\t1\t1\t1\t1\t2\t300\t104\t80\t20\t96.1\t112.50\n" +
	"5\t1\t1\t1\t2\t1\t100\t131\t90\t20\t91.3\tTVA\n" +
	"5\t1\t1\t1\t2\t2\t300\t138\t40\t20\t90.0\t21.38\n"

func TestOCRReader_RendersAndCleansUp(t *testing.T) {
	var renderDir string
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			renderDir = filepath.Dir(prefix)
			for _, n := range []string{"1", "2"} {
				if err := os.WriteFile(prefix+"-"+n+".png", []byte("png"), 0o600); err != nil {
					return nil, nil, err
				}
			}
			return nil, nil, nil
		case "tesseract":
			if args[len(args)-1] == "tsv" {
				return []byte(ocrTSV), nil, nil
			}
			return []byte("Energie 112.50\nTVA 21.38\n"), nil, nil
		}
		return nil, nil, errors.New("unexpected " + name)
	}}
	res := Extract(context.Background(), NewOCRReader(newEngine(runner)), FromBytes("scan.pdf", []byte("%PDF-1.4")))

	require.False(t, res.Failed(), res.ErrorMessage())
	assert.Equal(t, constants.MethodOCR, res.Method)
	assert.Equal(t, "Energie 112.50\nTVA 21.38\n\nEnergie 112.50\nTVA 21.38\n\n", res.Text)
	require.Equal(t, 2, res.TableCount)
	assert.Equal(t, [][]string{{"Energie", "112.50"}, {"TVA", "21.38"}}, res.Tables[0].Rows)

	require.NotEmpty(t, renderDir)
	assert.NoDirExists(t, renderDir)
}

func TestOCRReader_SingleBandIsNotATable(t *testing.T) {
	tsv := strings.Join(strings.Split(ocrTSV, "\n")[:3], "\n") + "\n"
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			return nil, nil, os.WriteFile(args[len(args)-1]+"-1.png", []byte("png"), 0o600)
		}
		if args[len(args)-1] == "tsv" {
			return []byte(tsv), nil, nil
		}
		return []byte("Energie 112.50\n"), nil, nil
	}}
	res := Extract(context.Background(), NewOCRReader(newEngine(runner)), FromBytes("scan.pdf", []byte("%PDF-1.4")))

	require.False(t, res.Failed(), res.ErrorMessage())
	assert.Zero(t, res.TableCount)
}

func TestComparator_FixedOrderAndIsolation(t *testing.T) {
	layout := &stubReader{method: constants.MethodLayout, openErr: errors.New("pdftotext: not found")}
	content := &stubReader{method: constants.MethodEmbedded, pages: []string{"Total 100 RON"}}
	ocrR := &stubReader{method: constants.MethodOCR, pages: []string{"x"}, panicOn: 1}
	c := NewComparatorWithReaders(nil, layout, content, ocrR)

	results := c.Compare(context.Background(), FromBytes("bill.pdf", nil))
	require.Len(t, results, 3)
	assert.Equal(t, []constants.Method{constants.MethodLayout, constants.MethodEmbedded, constants.MethodOCR},
		[]constants.Method{results[0].Method, results[1].Method, results[2].Method})
	assert.True(t, results[0].Failed())
	assert.False(t, results[1].Failed())
	assert.Equal(t, "Total 100 RON\n", results[1].Text)
	assert.Equal(t, FailurePanic, results[2].Failure.Kind)
}

func TestComparator_Idempotent(t *testing.T) {
	c := NewComparatorWithReaders(nil, NewContentReader())
	src := FromBytes("bill.pdf", buildPDF(t, billPages()...))

	first := c.Compare(context.Background(), src)
	second := c.Compare(context.Background(), src)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	first[0].ProcessingTime, second[0].ProcessingTime = 0, 0
	assert.Equal(t, first, second)
}

func TestNewComparator_OCROptIn(t *testing.T) {
	engine := newEngine(&fakeRunner{})
	assert.Equal(t, []constants.Method{constants.MethodLayout, constants.MethodEmbedded},
		NewComparator(engine, Options{}, nil).Methods())
	assert.Equal(t, constants.AllMethods,
		NewComparator(engine, Options{EnableOCR: true}, nil).Methods())
}

func TestComparator_Primary(t *testing.T) {
	c := NewComparatorWithReaders(nil,
		&stubReader{method: constants.MethodLayout, pages: []string{"   "}},
		&stubReader{method: constants.MethodEmbedded, pages: []string{"bill text"}},
	)
	text, results := c.Primary(context.Background(), FromBytes("bill.pdf", nil))
	assert.Equal(t, "bill text\n", text)
	assert.Len(t, results, 2)

	empty := NewComparatorWithReaders(nil, &stubReader{method: constants.MethodLayout, openErr: errors.New("boom")})
	text, _ = empty.Primary(context.Background(), FromBytes("bill.pdf", nil))
	assert.Empty(t, text)
}

func TestTable_NormalizeAndMarkdown(t *testing.T) {
	tbl := NewTable([][]string{{"Produs", "  Total  "}, {"", ""}, {"Energie | activa", "112.50", "RON"}})
	assert.Equal(t, 3, tbl.Cols())
	assert.Equal(t, [][]string{{"Produs", "Total", ""}, {"Energie | activa", "112.50", "RON"}}, tbl.Rows)
	assert.Equal(t, "| Produs | Total |  |\n|---|---|---|\n| Energie \\| activa | 112.50 | RON |\n", tbl.Markdown())
	assert.True(t, NewTable([][]string{{" "}}).Empty())
}

func TestSource_MaterializeBuffer(t *testing.T) {
	path, cleanup, err := FromBytes("bill.pdf", []byte("%PDF-1.4")).Materialize(t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
	cleanup()
	assert.NoFileExists(t, path)

	_, _, err = FromPath(t.TempDir()).Materialize("")
	assert.Error(t, err)
}

func TestResult_JSON(t *testing.T) {
	bad := failed(constants.MethodEmbedded, FailureOpen, errors.New("parse pdf: not a PDF file"))
	b, err := json.Marshal(bad)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "parse pdf: not a PDF file", got["error"])
	assert.Equal(t, "open", got["error_kind"])
	assert.Equal(t, "pdf-content", got["method"])
	assert.Equal(t, float64(0), got["table_count"])

	ok := succeeded(constants.MethodLayout, "Total 133.88\n", []Table{})
	b, err = json.Marshal(ok)
	require.NoError(t, err)
	got = map[string]any{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotContains(t, got, "error")
	assert.NotContains(t, got, "error_kind")
	assert.Equal(t, "Total 133.88\n", got["text"])
}

func TestResult_IsNotAnError(t *testing.T) {
	res := failed(constants.MethodLayout, FailureBackend, errors.New("pdftotext: exit status 1"))
	_, isErr := any(res).(error)
	assert.False(t, isErr)
	assert.Contains(t, fmt.Sprintf("%+v", res), "Method:pdftotext-layout")
}
