package pdf

import (
	"bytes"
	"io"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/fonts"
)

// Info is the document information dictionary.
type Info struct {
	Title     string
	Author    string
	Subject   string
	Keywords  string
	Creator   string
	CreatedAt time.Time
}

// Option configures a Document.
type Option func(*Document)

// WithInfo sets the document information. A zero CreatedAt leaves fpdf's
// clock in charge, which makes output differ between runs.
func WithInfo(info Info) Option {
	return func(d *Document) { d.info = info }
}

// WithLogger sets the logger used for images replaced by placeholders.
func WithLogger(l *log.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Document builds one PDF file page by page. It is not safe for
// concurrent use.
type Document struct {
	pdf    *fpdf.Fpdf
	info   Info
	logger *log.Logger
	images map[string]bool
}

// NewDocument starts an empty document whose default page size is the
// bleed page of geom.
func NewDocument(geom book.Geometry, opts ...Option) *Document {
	d := &Document{
		logger: log.New(io.Discard),
		images: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}

	p := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geom.PageWidth(), Ht: geom.PageHeight()},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCatalogSort(true)
	for _, w := range []fonts.Weight{fonts.Normal, fonts.Bold} {
		p.AddUTF8FontFromBytes(fonts.Family, fonts.Style(w), fonts.TTF(w))
	}

	if d.info.Title != "" {
		p.SetTitle(fonts.Printable(d.info.Title), true)
	}
	if d.info.Author != "" {
		p.SetAuthor(fonts.Printable(d.info.Author), true)
	}
	if d.info.Subject != "" {
		p.SetSubject(fonts.Printable(d.info.Subject), true)
	}
	if d.info.Keywords != "" {
		p.SetKeywords(fonts.Printable(d.info.Keywords), true)
	}
	if d.info.Creator != "" {
		p.SetCreator(fonts.Printable(d.info.Creator), true)
	}
	if !d.info.CreatedAt.IsZero() {
		p.SetCreationDate(d.info.CreatedAt)
		p.SetModificationDate(d.info.CreatedAt)
	}
	d.pdf = p
	return d
}

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int { return d.pdf.PageCount() }

// AddPage appends one page drawn from plan.
func (d *Document) AddPage(plan *compose.Plan) error {
	if err := d.pdf.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeDocumentBuild, err, "document already failed")
	}
	d.pdf.AddPageFormat("P", fpdf.SizeType{Wd: plan.Width, Ht: plan.Height})

	for _, op := range plan.Ops {
		switch op.Kind {
		case compose.OpImage:
			d.drawImage(plan, op)
		case compose.OpRect:
			d.drawRect(plan.Height, op)
		case compose.OpText:
			d.drawText(plan.Height, op)
		}
	}

	if err := d.pdf.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeDocumentBuild, err, "draw page %s", plan.PageID)
	}
	return nil
}

// Bytes finalizes the document and returns the encoded PDF. The document
// cannot be extended afterwards.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo finalizes the document into w. A panic inside the PDF encoder is
// returned as a DOCUMENT_BUILD error.
func (d *Document) WriteTo(w io.Writer) (n int64, err error) {
	if d.pdf.PageCount() == 0 {
		return 0, errors.New(errors.ErrCodeDocumentBuild, "document has no pages")
	}
	cw := &countingWriter{w: w}
	defer func() {
		if r := recover(); r != nil {
			n, err = cw.n, errors.New(errors.ErrCodeDocumentBuild, "finalize document: %v", r)
		}
	}()
	if err := d.pdf.Output(cw); err != nil {
		return cw.n, errors.Wrap(errors.ErrCodeDocumentBuild, err, "finalize document")
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
