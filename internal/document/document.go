package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrUnknownTemplate = errors.New("no template file for contract kind")
)

var templateFiles = map[contract.Template]string{
	contract.TemplateNDA: "nda.docx",
	contract.TemplateAPI: "contrato_api.docx",
}

// Generator fills .docx templates with supplier data and stores them per supplier.
type Generator struct {
	templatesDir string
	outputDir    string
}

func NewGenerator(templatesDir, outputDir string) *Generator {
	return &Generator{templatesDir: templatesDir, outputDir: outputDir}
}

// fileName keeps the contract number from escaping the supplier directory.
var fileName = strings.NewReplacer("/", "-", "\\", "-", "..", "-")

// Generate writes <outputDir>/<cnpj>/<number>_v<version>.docx and returns its absolute path.
func (g *Generator) Generate(company *registry.Company, number string, tmpl contract.Template, version int) (string, error) {
	name, ok := templateFiles[tmpl]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, tmpl)
	}

	dir, err := filepath.Abs(filepath.Join(g.outputDir, registry.Digits(company.CNPJ)))
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	dst := filepath.Join(dir, fileName.Replace(number)+"_v"+strconv.Itoa(version)+".docx")

	tmp, err := os.CreateTemp(dir, ".contract-*.docx")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	err = render(filepath.Join(g.templatesDir, name), tmp, placeholders(company, number))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("moving document into place: %w", err)
	}

	return dst, nil
}

func placeholders(company *registry.Company, number string) *strings.Replacer {
	return strings.NewReplacer(
		"{{numero_contrato}}", escape(number),
		"{{razao_social}}", escape(company.LegalName),
		"{{cnpj}}", escape(company.CNPJ),
		"{{endereco}}", escape(strings.TrimSpace(company.Address())),
	)
}

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))

	return b.String()
}

// substituted reports whether a package part carries body text.
func substituted(name string) bool {
	if name == "word/document.xml" {
		return true
	}

	base := path.Base(name)

	return path.Dir(name) == "word" &&
		(strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")) &&
		strings.HasSuffix(base, ".xml")
}

func render(src string, w io.Writer, r *strings.Replacer) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}
	defer zr.Close()

	zw := zip.NewWriter(w)

	for _, f := range zr.File {
		if !substituted(f.Name) {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}

			continue
		}

		if err := rewrite(zw, f, r); err != nil {
			return err
		}
	}

	return zw.Close()
}

func rewrite(zw *zip.Writer, f *zip.File, r *strings.Replacer) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.Name, err)
	}

	out, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.Name, err)
	}

	if _, err := r.WriteString(out, string(body)); err != nil {
		return fmt.Errorf("writing %s: %w", f.Name, err)
	}

	return nil
}

// Open returns the stored document for download.
func (g *Generator) Open(p string) (*os.File, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("opening document: %w", err)
	}

	return f, nil
}

// Remove deletes a stored document. A missing file is not an error.
func (g *Generator) Remove(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing document: %w", err)
	}

	return nil
}

// Archive zips the given documents into w, each under its base name.
// Missing files are skipped.
func (g *Generator) Archive(w io.Writer, paths []string) error {
	zw := zip.NewWriter(w)

	for _, p := range paths {
		if p == "" {
			continue
		}

		if err := addFile(zw, p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return err
		}
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	zf, err := zw.Create(filepath.Base(p))
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", p, err)
	}

	if _, err := io.Copy(zf, f); err != nil {
		return fmt.Errorf("archiving %s: %w", p, err)
	}

	return nil
}
