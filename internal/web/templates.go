package web

// Page templates. Each page defines "title" and "content"; "layout" wraps them.
var pageTemplates = map[string]string{
	"layout": `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{template "title" .}} - uwu</title>
</head>
<body>
<nav><a href="/">uwuify</a> | <a href="/history">history</a> <small>{{.Version}}</small></nav>
<main>{{template "content" .}}</main>
</body>
</html>{{end}}`,

	"index": `{{define "title"}}{{.Title}}{{end}}
{{define "content"}}
<form method="post" action="/">
<textarea name="text" rows="8" cols="80">{{.Text}}</textarea><br>
<label><input type="checkbox" name="markdown" value="true"{{if .Markdown}} checked{{end}}> markdown</label>
<label><input type="checkbox" name="save" value="true"{{if .Save}} checked{{end}}> save</label>
<button type="submit">uwuify</button>
</form>
{{if .HasResult}}
<section id="result">
{{if .Fallback}}<p class="fallback">transform failed, showing input unchanged</p>{{end}}
{{if .Markdown}}<div class="rendered">{{.RenderedHTML}}</div>{{end}}
<pre>{{.Output}}</pre>
{{if .ID}}<p>saved as <a href="/history/{{.ID}}">{{.ID}}</a></p>{{end}}
</section>
{{end}}
{{end}}`,

	"history": `{{define "title"}}{{.Title}}{{end}}
{{define "content"}}
{{if .Items}}
<table>
<tr><th>id</th><th>when</th><th>source</th><th>chars</th><th>preview</th></tr>
{{range .Items}}<tr>
<td><a href="/history/{{.ID}}">{{.ID}}</a></td>
<td>{{formatTime .CreatedAt}}</td>
<td>{{.Source}}</td>
<td>{{formatChars .InputChars}}</td>
<td>{{.Preview}}</td>
</tr>{{end}}
</table>
{{if .Pagination.HasMore}}<a href="/history?offset={{add .Pagination.Offset .Pagination.Limit}}&limit={{.Pagination.Limit}}">older</a>{{end}}
{{else}}
<p>No transforms recorded yet.</p>
{{end}}
{{end}}`,

	"detail": `{{define "title"}}{{.Title}}{{end}}
{{define "content"}}
<h1>{{.Record.ID}}</h1>
<p>{{formatTime .Record.CreatedAt}} via {{.Record.Source}}{{if .Record.Fallback}} (fallback){{end}}</p>
<h2>input</h2>
<pre>{{.Record.Input}}</pre>
<h2>output</h2>
{{if .Record.Markdown}}<div class="rendered">{{.RenderedHTML}}</div>{{end}}
<pre>{{.Record.Output}}</pre>
<h2>options</h2>
<pre>{{printf "%s" .Record.Options}}</pre>
{{end}}`,

	"error": `{{define "title"}}{{.Title}}{{end}}
{{define "content"}}
<h1>{{.StatusCode}}</h1>
<p class="error-message">{{.Message}}</p>
{{end}}`,
}
