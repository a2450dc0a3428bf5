package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// esc is shorthand for the templ HTML escaper.
func esc(s string) string { return templ.EscapeString(s) }

// Layout wraps a body component in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>%s</style>
</head>
<body>
`, esc(title), pageCSS); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// HomePage lists the configurations a new game can use and the running sessions.
func HomePage(configs []*service.ConfigInfo, sessions []*service.SessionInfo) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<main class="home"><h1>Slide Puzzle</h1>`)
		b.WriteString(`<form method="post" action="/play"><label>Rules <select name="config">`)
		for _, c := range configs {
			fmt.Fprintf(&b, `<option value="%s">%s (%s)</option>`,
				esc(c.ConfigID), esc(c.Name), esc(engine.FormatClock(c.TimeLimitSeconds)))
		}
		b.WriteString(`</select></label> <button type="submit">New game</button></form>`)

		if len(sessions) > 0 {
			b.WriteString(`<h2>Running games</h2><ul class="sessions">`)
			for _, s := range sessions {
				level := 0
				if s.GameState != nil {
					level = s.GameState.Level
				}
				fmt.Fprintf(&b, `<li><a href="/play/%s">%s</a> %s, level %d</li>`,
					esc(s.ID), esc(s.ID), esc(s.ConfigName), level)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</main>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return Layout("Slide Puzzle", body)
}

// GamePage is the full page of one session: the board fragment plus the
// script that posts moves and listens on the WebSocket.
func GamePage(sessionID string, state *engine.GameState, assets *AssetResolver) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<main class="game" id="game" data-session="%s">`, esc(sessionID)); err != nil {
			return err
		}
		if err := Board(sessionID, state, assets).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `</main>
<p class="back"><a href="/">All games</a></p>
<script>%s</script>`, gameJS)
		return err
	})
	return Layout(state.Title, body)
}

// Board renders the level header, the grid, the reference picture and the
// dialog for the current phase. It is also served alone as a fragment.
func Board(sessionID string, state *engine.GameState, assets *AssetResolver) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section class="board-wrap" id="board" data-phase="%s">`, esc(string(state.Phase)))
		fmt.Fprintf(&b, `<header><h1>%s</h1><span class="clock" id="clock">%s</span><span class="moves">Moves: %d</span></header>`,
			esc(state.Title), esc(state.Timer.Clock), state.Moves)
		if state.Message != "" {
			fmt.Fprintf(&b, `<p class="message">%s</p>`, esc(state.Message))
		}

		movable := make(map[int]bool, len(state.Movable))
		for _, i := range state.Movable {
			movable[i] = true
		}

		fmt.Fprintf(&b, `<div class="grid" style="grid-template-columns: repeat(%d, 1fr)">`, state.GridSize)
		for _, cell := range assets.Board(state.Tiles) {
			if cell.Blank {
				fmt.Fprintf(&b, `<div class="tile blank" data-index="%d"></div>`, cell.Index)
				continue
			}
			class := "tile"
			if movable[cell.Index] && state.Phase == engine.PhasePlaying {
				class += " movable"
			}
			fmt.Fprintf(&b, `<button class="%s" data-index="%d" title="%s"><img src="%s" alt="%s"><span>%s</span></button>`,
				class, cell.Index, esc(string(cell.Tile)), esc(cell.URL), esc(cell.Label), esc(cell.Label))
		}
		b.WriteString(`</div>`)

		fmt.Fprintf(&b, `<aside class="reference"><img src="%s" alt="Solved picture"></aside>`,
			esc(assets.ReferenceURL(state.Level)))
		b.WriteString(`<nav class="controls"><button data-action="restart">Restart</button>`)
		b.WriteString(`<button data-action="skip">Next level</button></nav>`)

		if d := DialogFor(state); d != nil {
			writeDialog(&b, d)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeDialog(b *strings.Builder, d *Dialog) {
	fmt.Fprintf(b, `<div class="dialog" role="dialog" data-kind="%s"><div class="dialog-box">`, esc(d.Kind))
	if d.CloseAction != "" {
		fmt.Fprintf(b, `<button class="close" data-action="%s" aria-label="Close">&times;</button>`, esc(d.CloseAction))
	}
	fmt.Fprintf(b, `<h2>%s</h2><p>%s</p>`, esc(d.Title), esc(d.Message))
	if d.Image != "" {
		fmt.Fprintf(b, `<img class="question" src="%s" alt="">`, esc(d.Image))
	}
	b.WriteString(`<div class="choices">`)
	for _, btn := range d.Buttons {
		fmt.Fprintf(b, `<button data-action="%s" data-body="%s">%s</button>`,
			esc(btn.Action), esc(btn.Body), esc(btn.Label))
	}
	b.WriteString(`</div></div></div>`)
}

const pageCSS = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f1ea; color: #222; }
main { max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
header { display: flex; gap: 1rem; align-items: baseline; }
.clock { font-variant-numeric: tabular-nums; font-size: 1.5rem; }
.grid { display: grid; gap: 2px; width: min(90vw, 480px); aspect-ratio: 1; }
.tile { position: relative; border: 0; padding: 0; background: #ccc; cursor: default; }
.tile img { width: 100%; height: 100%; object-fit: cover; display: block; }
.tile span { position: absolute; left: 4px; top: 2px; font-size: .8rem; color: #fff; text-shadow: 0 0 2px #000; }
.tile.movable { cursor: pointer; outline: 2px solid #3a7; }
.tile.blank { background: transparent; }
.reference img { width: 120px; margin-top: 1rem; }
.dialog { position: fixed; inset: 0; background: rgba(0,0,0,.45); display: flex; align-items: center; justify-content: center; }
.dialog-box { background: #fff; padding: 1.5rem; border-radius: 8px; max-width: 420px; position: relative; }
.dialog .close { position: absolute; right: .5rem; top: .25rem; border: 0; background: none; font-size: 1.5rem; }
.dialog img.question { max-width: 100%; }
.choices { display: flex; gap: .5rem; flex-wrap: wrap; }
`

const gameJS = `
(function () {
  var root = document.getElementById('game');
  var id = root.dataset.session;
  var api = '/api/sessions/' + encodeURIComponent(id) + '/';

  function refresh() {
    fetch('/play/' + encodeURIComponent(id) + '/board')
      .then(function (r) { return r.text(); })
      .then(function (html) { document.getElementById('board').outerHTML = html; });
  }

  function post(path, body) {
    return fetch(api + path, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: body || '{}'
    }).then(refresh);
  }

  root.addEventListener('click', function (e) {
    var el = e.target.closest('[data-action], .tile.movable');
    if (!el) return;
    if (el.dataset.action) {
      post(el.dataset.action, el.dataset.body);
    } else {
      post('move', JSON.stringify({ index: Number(el.dataset.index) }));
    }
  });

  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws?session=' + encodeURIComponent(id));
  ws.onmessage = function (msg) {
    var m = JSON.parse(msg.data);
    if (m.event === 'tick' && m.data) {
      document.getElementById('clock').textContent = m.data.clock;
      return;
    }
    if (m.event !== 'board_changed' && m.event !== 'first_move') refresh();
  };
})();
`
