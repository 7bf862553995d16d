package certificate

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/domain"
)

// Renderer produces the final certificate document for a completed case and
// returns its stored path. Unlike notification sends, a rendering failure is
// fatal to the generate-certificate request.
type Renderer interface {
	Render(app *domain.Application, witnesses []domain.Witness) (string, error)
}

// HTMLRenderer writes an HTML certificate document to the output directory.
type HTMLRenderer struct {
	dir  string
	tmpl *template.Template
}

const certificateTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Nikah Certificate {{.App.ApplicationNumber}}</title></head>
<body>
  <h1>Certificate of Nikah</h1>
  <p>Certificate No: <strong>{{.App.ApplicationNumber}}</strong></p>
  <h2>Groom</h2>
  <p>{{.App.GroomName}}, son of {{.App.GroomFatherName}}</p>
  {{if .App.GroomRepresentative}}<p>Represented by: {{.App.GroomRepresentative}}</p>{{end}}
  <h2>Bride</h2>
  <p>{{.App.BrideName}}, daughter of {{.App.BrideFatherName}}</p>
  {{if .App.BrideRepresentative}}<p>Represented by: {{.App.BrideRepresentative}}</p>{{end}}
  <h2>Mahr</h2>
  <p>{{.App.MahrAmount}} ({{.App.MahrType}})</p>
  <h2>Solemnisation</h2>
  <p>{{with .App.SolemnisationDate}}{{.}}{{end}} {{.App.SolemnisationTime}} at {{.App.SolemnisationPlace}}</p>
  <h2>Witnesses</h2>
  <ol>
  {{range .Witnesses}}<li value="{{.WitnessOrder}}">{{.Name}}, son of {{.FatherName}}, {{.Address}}</li>
  {{end}}</ol>
</body>
</html>`

// NewHTMLRenderer parses the certificate template and prepares the output
// directory.
func NewHTMLRenderer(cfg config.CertificateConfig) (*HTMLRenderer, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create certificate dir: %w", err)
	}
	tmpl, err := template.New("certificate").Parse(certificateTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse certificate template: %w", err)
	}
	return &HTMLRenderer{dir: cfg.OutputDir, tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(app *domain.Application, witnesses []domain.Witness) (string, error) {
	name := fmt.Sprintf("certificate-%s.html", app.ApplicationNumber)
	path := filepath.Join(r.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create certificate file: %w", err)
	}
	defer out.Close()

	data := struct {
		App       *domain.Application
		Witnesses []domain.Witness
	}{App: app, Witnesses: witnesses}

	if err := r.tmpl.Execute(out, data); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("render certificate: %w", err)
	}
	return path, nil
}
