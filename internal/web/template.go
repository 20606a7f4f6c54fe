package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rc-decoder/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"timeOrNever": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>RC Decoder</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>RC Decoder</h1>

<h2>Capture</h2>
<table>
<tr><th>Capture</th><td class="{{if .CaptureEnabled}}on{{else}}off{{end}}">{{if .CaptureEnabled}}enabled{{else}}disabled{{end}}</td></tr>
<tr><th>Samples accepted</th><td>{{.Counts.Accepted}}</td></tr>
<tr><th>Samples rejected</th><td>{{.Counts.Rejected}}</td></tr>
<tr><th>Sync hits</th><td>{{.Counts.Sync}}</td></tr>
<tr><th>Last match</th><td>{{timeOrNever .LastMatch}}{{if ge .LastTemplate 0}} (template {{.LastTemplate}}){{end}}</td></tr>
</table>

<h2>Templates</h2>
<table>
<tr><th>Periods</th><td>Tolerance</td><td>Matches</td></tr>
{{$snap := .}}
{{range $i, $t := .Config.Templates}}<tr><th>{{$t.Periods}}{{if eq $i 0}} (sync){{end}}</th><td>{{$t.Tolerance}}</td><td>{{index $snap.Counts.Matches $i}}</td></tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Input</th><td>{{.Config.Chip}}:{{.Config.Pin}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickNs}}ns</td></tr>
<tr><th>Plausible range</th><td>{{.Config.MinTicks}}–{{.Config.MaxTicks}} ticks</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
