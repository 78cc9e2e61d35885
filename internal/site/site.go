// Package site renders the static HTML site from stored lines: Greek text,
// translations, index labels, and overlap highlights from the latest
// finished run.
package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

// Overlap is one lexicon match attached to a line for display.
type Overlap struct {
	EntryID   int64      `json:"entry_id"`
	EntryRef  *string    `json:"entry_ref,omitempty"`
	Headword  *string    `json:"headword,omitempty"`
	CharRatio float64    `json:"char_ratio"`
	WordRatio float64    `json:"word_ratio"`
	Span      greek.Span `json:"span"`
}

// Line is one rendered passage. GreekPre/GreekHit/GreekPost split the
// original text around the strongest overlap span (rune offsets), so the
// template can highlight without trusting client-side slicing.
type Line struct {
	Ref          string     `json:"ref"`
	Greek        string     `json:"greek_text"`
	English      *string    `json:"english_translation"`
	Summary      *string    `json:"summary,omitempty"`
	TranslatedAt *time.Time `json:"translated_at"`
	Overlaps     []Overlap  `json:"overlaps,omitempty"`

	GreekPre  string `json:"-"`
	GreekHit  string `json:"-"`
	GreekPost string `json:"-"`
}

// Stats summarizes translation progress.
type Stats struct {
	Total      int `json:"total"`
	Translated int `json:"translated"`
}

// Data is everything one render needs.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Stats       Stats
	Lines       []Line
}

// SplitHighlight fills the pre/hit/post fields from the best overlap span.
// Lines without overlaps render whole.
func (l *Line) SplitHighlight() {
	if len(l.Overlaps) == 0 || l.Overlaps[0].Span.Empty() {
		l.GreekPre = l.Greek
		return
	}
	runes := []rune(l.Greek)
	sp := l.Overlaps[0].Span
	if sp.Start < 0 || sp.End > len(runes) {
		l.GreekPre = l.Greek
		return
	}
	l.GreekPre = string(runes[:sp.Start])
	l.GreekHit = string(runes[sp.Start:sp.End])
	l.GreekPost = string(runes[sp.End:])
}

// Generate writes index.html, style.css and lines.json into dir.
func Generate(dir string, data Data) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i := range data.Lines {
		data.Lines[i].SplitHighlight()
	}

	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(styleCSS), 0644); err != nil {
		return fmt.Errorf("failed to write style.css: %w", err)
	}

	blob, err := json.MarshalIndent(data.Lines, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode lines.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lines.json"), append(blob, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write lines.json: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("failed to create index.html: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := indexTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render index.html: %w", err)
	}
	return nil
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"percent": func(s Stats) string {
		if s.Total == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(s.Translated)/float64(s.Total)*100)
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"ratio": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
}).Parse(indexHTML))

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="style.css" />
</head>
<body>
  <div class="wrap">
    <header>
      <h1>{{.Title}}</h1>
      <div class="meta">
        <span class="pill">{{.Stats.Translated}}/{{.Stats.Total}} translated</span>
        <span class="pill">{{percent .Stats}}</span>
      </div>
    </header>
    <div class="controls">
      <input id="q" type="search" placeholder="Filter by ref or text…" autocomplete="off" />
      <span class="pill">Generated: {{.GeneratedAt.UTC.Format "2006-01-02 15:04 UTC"}}</span>
    </div>
    <div class="lines" id="lines">
{{- range .Lines}}
      <section class="line" id="ref-{{.Ref}}">
        <div class="line-head">
          <div class="ref"><a href="#ref-{{.Ref}}">{{.Ref}}</a></div>
          {{- if .Summary}}<div class="summary">{{.Summary}}</div>{{end}}
          <div class="ts">{{date .TranslatedAt}}</div>
        </div>
        <div class="grid">
          <div class="greek" lang="el">{{.GreekPre}}{{if .GreekHit}}<mark>{{.GreekHit}}</mark>{{end}}{{.GreekPost}}</div>
          <div class="english">{{if .English}}{{.English}}{{else}}<span class="pending">Pending translation</span>{{end}}</div>
        </div>
{{- if .Overlaps}}
        <div class="overlaps">
{{- range .Overlaps}}
          <span class="pill overlap" title="letters {{ratio .CharRatio}}, words {{ratio .WordRatio}}">{{if .Headword}}{{.Headword}}{{else}}entry {{.EntryID}}{{end}}{{if .EntryRef}} ({{.EntryRef}}){{end}}</span>
{{- end}}
        </div>
{{- end}}
      </section>
{{- end}}
    </div>
    <footer>
      <div>Stats: <code id="stats">{"total": {{.Stats.Total}}, "translated": {{.Stats.Translated}}}</code></div>
    </footer>
  </div>
  <script>
    const q = document.getElementById('q');
    const lines = Array.from(document.querySelectorAll('.line'));
    function norm(s){ return (s||'').toLowerCase(); }
    function apply(){
      const needle = norm(q.value).trim();
      for (const el of lines){
        if (!needle){ el.style.display = ''; continue; }
        const hay = norm(el.innerText);
        el.style.display = hay.includes(needle) ? '' : 'none';
      }
    }
    q.addEventListener('input', apply);
  </script>
</body>
</html>
`

const styleCSS = `:root{
  --bg:#0b1020;
  --panel:#111a33;
  --text:#e7ecff;
  --muted:#aab4e6;
  --accent:#7aa2ff;
  --border:#243059;
}
html,body{height:100%;}
body{
  margin:0;
  background:linear-gradient(180deg,var(--bg),#070a14);
  color:var(--text);
  font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, "Apple Color Emoji","Segoe UI Emoji";
}
a{color:var(--accent); text-decoration:none;}
a:hover{text-decoration:underline;}
.wrap{max-width:1100px;margin:0 auto;padding:28px 18px 64px;}
header{display:flex;gap:16px;align-items:baseline;flex-wrap:wrap;}
h1{font-size:28px;margin:0;}
.meta{color:var(--muted);font-size:14px;}
.controls{margin-top:14px;display:flex;gap:10px;flex-wrap:wrap;}
input[type="search"]{
  flex:1 1 320px;
  padding:10px 12px;
  border-radius:10px;
  border:1px solid var(--border);
  background:rgba(17,26,51,.65);
  color:var(--text);
  outline:none;
}
.pill{
  display:inline-block;
  padding:3px 10px;
  border-radius:999px;
  border:1px solid var(--border);
  color:var(--muted);
  font-size:12px;
}
.lines{margin-top:18px;display:flex;flex-direction:column;gap:12px;}
.line{
  border:1px solid var(--border);
  background:rgba(17,26,51,.55);
  border-radius:14px;
  padding:14px 14px 12px;
}
.line-head{display:flex;gap:10px;align-items:center;justify-content:space-between;flex-wrap:wrap;}
.ref{font-weight:650;}
.summary{color:var(--muted);font-size:13px;font-style:italic;}
.ts{color:var(--muted);font-size:12px;}
.grid{display:grid;grid-template-columns:1fr;gap:10px;margin-top:10px;}
@media (min-width: 880px){
  .grid{grid-template-columns:1fr 1fr;}
}
.greek{
  font-family: ui-serif, "New Athena Unicode", "Palatino Linotype", Palatino, serif;
  font-size:16px;
  line-height:1.55;
  white-space:pre-wrap;
}
.greek mark{
  background:rgba(122,162,255,.28);
  color:inherit;
  border-radius:4px;
  padding:0 1px;
}
.english{
  font-size:15px;
  line-height:1.55;
  white-space:pre-wrap;
}
.pending{color:var(--muted);font-style:italic;}
.overlaps{margin-top:10px;display:flex;gap:6px;flex-wrap:wrap;}
.pill.overlap{border-color:var(--accent);}
footer{margin-top:26px;color:var(--muted);font-size:13px;}
`
