package web

// Inline page templates. The stats fragment is shared between the initial
// page render and websocket driven refreshes.
const pageHTML = `
{{define "menu"}}
<div class="menu">
{{range .Menu}}<a href="{{.Url}}"{{if .Selected}} class="selected"{{end}}>{{.Name}}</a> {{end}}
</div>
{{end}}

{{define "stats"}}
<table border="1" cellpadding="4">
<tr><th>epoch</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .LatestStats 10}}<tr><td>{{.Epoch}}</td>{{range .Format}}<td>{{.}}</td>{{end}}</tr>{{end}}
</table>
{{end}}

{{define "train"}}
<!doctype html>
<html><head><title>voclass</title></head><body>
{{template "menu" .}}
<h2>{{.Heading}}</h2>
<p><a href="/train/start">start</a> <a href="/train/stop">stop</a> &nbsp; {{.RunTime}}</p>
<div id="stats">{{template "stats" .}}</div>
{{.LossPlot 6 4}}
{{.ErrorPlot 6 4}}
<script>
var ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = function(e) { location.reload(); };
</script>
</body></html>
{{end}}

{{define "results"}}
<!doctype html>
<html><head><title>voclass results</title></head><body>
{{template "menu" .}}
<h2>evaluation results</h2>
{{if .HaveResult}}
<pre>{{range .Summary}}{{.}}
{{end}}</pre>
<table border="1" cellpadding="4">
<tr><th>class</th><th>AP</th><th>most confident</th><th>least confident</th></tr>
{{range .Rows}}<tr><td>{{.Name}}</td><td>{{.AP}}</td>
<td><a href="{{.TopUrl}}">top</a></td><td><a href="{{.LowerUrl}}">bottom</a></td></tr>{{end}}
</table>
{{else}}
<p>no evaluation has been run yet</p>
{{end}}
</body></html>
{{end}}
`
