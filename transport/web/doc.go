// Package web serves the browser front end of the slide puzzle.
//
// Pages are templ components built in Go: a home page that starts games, a
// game page, and the board fragment the page script swaps in after every
// change pushed over the WebSocket. The board fragment also renders the popup
// for the current phase (level complete, timeouts, continuation questions);
// its buttons post to the session API.
//
// AssetResolver maps fragment ids to split{n}x{n}-{i}.png and levels to the
// ref{n}x{n}.jpg reference picture under /static/images.
package web
