package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/smart-room/internal/status"
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
	"onOff":      status.OnOff,
	"openClosed": status.OpenClosed,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Smart Room</title>
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
.error { color: red; }
</style>
</head>
<body>
<h1>Smart Room</h1>

<h2>State</h2>
<table>
<tr><th>Light</th><td id="light-state" class="{{if .State.LightOn}}on{{else}}off{{end}}">{{onOff .State.LightOn}}</td></tr>
<tr><th>Window</th><td id="window-state" class="{{if .State.WindowOpen}}on{{else}}off{{end}}">{{openClosed .State.WindowOpen}}</td></tr>
<tr><th>Fan</th><td id="fan-state" class="{{if .State.FanOn}}on{{else}}off{{end}}">{{onOff .State.FanOn}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
<tr><th>Cycles</th><td>{{.Cycles}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Instance</th><td>{{.InstanceID}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>LIGHT ON</th><td>{{.Counts.LightOn}}</td></tr>
<tr><th>LIGHT OFF</th><td>{{.Counts.LightOff}}</td></tr>
<tr><th>WINDOW OPEN</th><td>{{.Counts.WindowOpen}}</td></tr>
<tr><th>WINDOW CLOSED</th><td>{{.Counts.WindowClosed}}</td></tr>
<tr><th>FAN ON</th><td>{{.Counts.FanOn}}</td></tr>
<tr><th>FAN OFF</th><td>{{.Counts.FanOff}}</td></tr>
</table>

<h2>Errors</h2>
<table>
<tr><th>Light</th><td>{{.Errors.Light}}</td></tr>
<tr><th>Window</th><td>{{.Errors.Window}}</td></tr>
<tr><th>Air</th><td>{{.Errors.Air}}</td></tr>
{{if .LastError}}<tr><th>Last</th><td class="error">{{.LastError}} ({{.LastErrorAt.UTC.Format "2006-01-02T15:04:05Z"}})</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
<tr><th>Pins</th><td>IR {{.Config.Pins.Infrared}}, LDR {{.Config.Pins.Photoresistor}}, LED {{.Config.Pins.LED}}, fan {{.Config.Pins.Fan}}, servo {{.Config.ServoPin}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() and Ready() methods but the template reads fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	return indexTmpl.Execute(w, data)
}
