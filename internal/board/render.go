// Package board renders the HTML shown on a Yunhu chat board.
package board

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
)

const (
	updateLayout = "2006-01-02 15:04:05"
	recordLayout = "2006-01-02 15:04"
)

// failedMarker replaces any value that could not be observed.
const failedMarker = template.HTML(`<span style='color:red;'>加载失败</span>`)

// ServerView is everything the board needs to know about one server.
type ServerView struct {
	Status domain.Status
	// Events is the recent presence history, newest first.
	Events []domain.PresenceEvent
}

// Renderer turns server views into board HTML.
type Renderer struct {
	tmpl *template.Template
	loc  *time.Location
}

// NewRenderer creates a Renderer formatting times in loc (time.Local when nil).
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{
		tmpl: template.Must(template.New("board").Parse(boardTemplate)),
		loc:  loc,
	}
}

type record struct {
	Player string
	Time   string
	Action string
}

type serverSection struct {
	Title        string
	Reachable    bool
	Online       int
	Max          int
	Latency      any
	DelayColor   string
	Version      any
	Address      string
	PlayersKnown bool
	Players      []string
	ShowRecords  bool
	Records      []record
}

type boardData struct {
	UpdatedAt string
	Sections  []serverSection
}

// Render builds the HTML for b from views, in the order given.
func (r *Renderer) Render(b domain.Board, views []ServerView, now time.Time) (string, error) {
	data := boardData{UpdatedAt: now.In(r.loc).Format(updateLayout)}

	limit := b.MaxPlayerRecords
	if limit <= 0 {
		limit = domain.DefaultMaxPlayerRecords
	}

	for _, v := range views {
		data.Sections = append(data.Sections, r.section(v, len(views) > 1, b.TrackPlayerChanges, limit))
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render board: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) section(v ServerView, named, track bool, limit int) serverSection {
	st := v.Status
	sec := serverSection{
		Reachable: st.Reachable,
		Address:   st.Address,
	}
	if named {
		sec.Title = st.Server
	}
	if !st.Reachable {
		return sec
	}

	sec.Online = st.PlayersOnline
	sec.Max = st.PlayersMax
	if st.Latency > 0 {
		sec.Latency = fmt.Sprintf("%.2f ms", st.LatencyMillis())
		sec.DelayColor = DelayColor(st.LatencyMillis())
	} else {
		sec.Latency = failedMarker
		sec.DelayColor = "red"
	}
	sec.Version = any(st.Version)
	if st.Version == "" {
		sec.Version = failedMarker
	}

	if st.Players.Known() {
		sec.PlayersKnown = true
		sec.Players = st.Players.Names()
	}

	if track {
		sec.ShowRecords = true
		events := v.Events
		if len(events) > limit {
			events = events[:limit]
		}
		for _, e := range events {
			action := "离开"
			if e.IsJoin() {
				action = "加入"
			}
			sec.Records = append(sec.Records, record{
				Player: e.Player,
				Time:   e.Time.In(r.loc).Format(recordLayout),
				Action: action,
			})
		}
	}
	return sec
}

// DelayColor maps a latency in milliseconds to the board colour.
func DelayColor(ms float64) string {
	switch {
	case ms < 100:
		return "green"
	case ms < 200:
		return "yellow"
	default:
		return "red"
	}
}

const boardTemplate = `{{- range $i, $s := .Sections}}{{if $i}}
<hr>
{{end}}{{if $s.Reachable}}
<h1>服务器实时状态{{with $s.Title}}：{{.}}{{end}}</h1>
<small><p>状态更新时间：{{$.UpdatedAt}}</p></small>
<p>服务器当前人数/最大人数: {{$s.Online}}/{{$s.Max}}</p>
<p>服务器延迟: <span style="color: {{$s.DelayColor}};">{{$s.Latency}}</span></p>
<hr>
<h1>服务器信息</h1>
<p>服务器版本：<code>{{$s.Version}}</code></p>
<p>服务器地址：<code>{{$s.Address}}</code></p>
<hr>
<h2>在线玩家列表</h2>
{{if not $s.PlayersKnown}}<p>玩家列表加载失败（需服务器开启 enable-query）</p>
{{else if $s.Players}}<ul>{{range $s.Players}}<li>{{.}}</li>{{end}}</ul>
{{else}}<p>当前没有玩家在线</p>
{{end}}{{if $s.ShowRecords}}<h2>最近玩家进出记录</h2><ul>{{range $s.Records}}<li>{{.Player}} 于 {{.Time}} {{.Action}}</li>{{end}}</ul>
{{end}}{{else}}
<h1>服务器好像没有开启{{with $s.Title}}：{{.}}{{end}}</h1>
<small><p>状态更新时间：{{$.UpdatedAt}}</p></small>
<p>服务器状态获取失败。</p>
{{end}}{{end}}`

// Source provides the latest observations of servers.
type Source interface {
	GetStatus(server string) (domain.Status, bool)
	RecentEvents(server string) []domain.PresenceEvent
}

// Views assembles the server views of b from src, in board order. A server
// never observed is shown as unreachable.
func Views(src Source, b domain.Board) []ServerView {
	views := make([]ServerView, 0, len(b.Servers))
	for _, name := range b.Servers {
		st, ok := src.GetStatus(name)
		if !ok {
			st = domain.Status{Server: name}
		}
		views = append(views, ServerView{
			Status: st,
			Events: src.RecentEvents(name),
		})
	}
	return views
}
