package server

import (
	"html/template"
	"net/http"

	"github.com/sensala/viewer/pkg/buildinfo"
)

type pageData struct {
	Endpoint string
	Version  string
	Width    float64
	Height   float64
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	size := s.session.Surfaces().Stanford().Size()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Endpoint: s.endpoint,
		Version:  buildinfo.Version,
		Width:    size.Width,
		Height:   size.Height,
	})
	if err != nil {
		s.logger.Error("render page", "err", err)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Sensala</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 1rem; text-align: center; }
  #discourse { width: min(40rem, 90%); padding: .5rem; font-size: 1rem; }
  #interpret { margin: .75rem; padding: .5rem 1.25rem; font-size: 1rem; }
  #attach { display: flex; flex-wrap: wrap; justify-content: center; gap: 1rem; }
  .main-svg { width: {{.Width}}px; height: {{.Height}}px; border: 1px solid #ddd; overflow: hidden; }
  .main-svg svg { width: 100%; height: 100%; }
  .main-svg { cursor: grab; }
  .main-svg.dragging { cursor: grabbing; }
  .loader { visibility: hidden; margin: 2rem auto; width: 2rem; height: 2rem;
    border: 4px solid #eee; border-top-color: #0d6efd; border-radius: 50%; animation: spin 1s linear infinite; }
  .loader.active { visibility: visible; }
  @keyframes spin { to { transform: rotate(360deg); } }
  #error { color: #b00020; min-height: 1.25rem; }
  footer { color: #888; font-size: .8rem; margin-top: 3rem; }
</style>
</head>
<body>
<h1>Sensala</h1>
<form id="form">
  <input type="text" name="discourse" id="discourse" autocomplete="off" placeholder="Discourse to interpret" />
  <div><button type="submit" id="interpret">Interpret!</button></div>
</form>
<div id="attach">
  <div id="svg-canvas-stanford" class="main-svg"></div>
  <div id="svg-canvas-sensala" class="main-svg"></div>
</div>
<div id="loader" class="loader"></div>
<h2 id="term"></h2>
<div id="error"></div>
<footer>sensala viewer {{.Version}}{{if .Endpoint}} &middot; {{.Endpoint}}{{end}}</footer>
<script>
(function () {
  var canvases = {
    stanford: document.getElementById("svg-canvas-stanford"),
    sensala: document.getElementById("svg-canvas-sensala")
  };
  var loader = document.getElementById("loader");
  var term = document.getElementById("term");
  var errorLine = document.getElementById("error");
  var ws;
  // Events older than the newest generation seen belong to a superseded
  // interpretation.
  var latestGeneration = 0;
  var views = {};

  function stale(evt) {
    if (typeof evt.generation !== "number") return false;
    if (evt.generation < latestGeneration) return true;
    latestGeneration = evt.generation;
    return false;
  }

  function resetView(name) { views[name] = {k: 1, x: 0, y: 0}; }

  // applyView composes the user's pan and zoom with the server's fit.
  function applyView(name) {
    var g = canvases[name].querySelector("g.viewport");
    if (!g) return;
    if (g.dataset.fit === undefined) g.dataset.fit = g.getAttribute("transform") || "";
    var v = views[name];
    g.setAttribute("transform", "translate(" + v.x + "," + v.y + ") scale(" + v.k + ") " + g.dataset.fit);
  }

  function enablePanZoom(name) {
    var el = canvases[name], drag = null;
    resetView(name);
    el.addEventListener("wheel", function (e) {
      e.preventDefault();
      var v = views[name], r = el.getBoundingClientRect();
      var px = e.clientX - r.left, py = e.clientY - r.top;
      var k = Math.min(8, Math.max(0.25, v.k * (e.deltaY < 0 ? 1.1 : 1 / 1.1)));
      v.x = px - (px - v.x) * k / v.k;
      v.y = py - (py - v.y) * k / v.k;
      v.k = k;
      applyView(name);
    }, {passive: false});
    el.addEventListener("mousedown", function (e) {
      drag = {x: e.clientX, y: e.clientY};
      el.classList.add("dragging");
    });
    window.addEventListener("mousemove", function (e) {
      if (!drag) return;
      var v = views[name];
      v.x += e.clientX - drag.x;
      v.y += e.clientY - drag.y;
      drag = {x: e.clientX, y: e.clientY};
      applyView(name);
    });
    window.addEventListener("mouseup", function () {
      drag = null;
      el.classList.remove("dragging");
    });
    el.addEventListener("dblclick", function () { resetView(name); applyView(name); });
  }

  function applyState(st) {
    loader.classList.toggle("active", st.loading);
    term.textContent = (!st.loading && st.result) ? st.result : "";
    errorLine.textContent = (!st.loading && st.last_error) ? st.last_error : "";
  }

  function onEvent(evt) {
    if (evt.type !== "error" && stale(evt)) return;
    var canvas = canvases[evt.surface];
    switch (evt.type) {
    case "state": applyState(evt.data); break;
    case "clear":
      if (canvas) { canvas.innerHTML = ""; resetView(evt.surface); }
      break;
    case "render":
      if (canvas) { canvas.innerHTML = evt.svg; resetView(evt.surface); applyView(evt.surface); }
      break;
    case "error": errorLine.textContent = evt.message; break;
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    ws = new WebSocket(proto + location.host + "/ws");
    // The snapshot sent on connect is authoritative, even after a server restart.
    ws.onopen = function () { latestGeneration = 0; };
    ws.onmessage = function (m) { onEvent(JSON.parse(m.data)); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }

  document.getElementById("form").addEventListener("submit", function (e) {
    e.preventDefault();
    var discourse = document.getElementById("discourse").value;
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({type: "interpret", discourse: discourse}));
      return;
    }
    fetch("/api/interpret", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({discourse: discourse, async: true})
    });
  });

  enablePanZoom("stanford");
  enablePanZoom("sensala");
  connect();
})();
</script>
</body>
</html>
`
