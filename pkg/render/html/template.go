package html

// viewerTemplate is the complete viewer page. The aggregated tree, its
// color assignment, and the duplicate summary are inlined as JSON; the
// treemap layout itself is drawn by the webtreemap library loaded from CDN.
const viewerTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="https://unpkg.com/webtreemap-cdt@3.2.1/dist/webtreemap.js"></script>
<style>
  * { box-sizing: border-box; }
  html, body { height: 100%; margin: 0; }
  body { display: flex; flex-direction: column; font: 14px -apple-system, 'Segoe UI', Roboto, sans-serif; color: #212121; }
  header { display: flex; align-items: center; gap: 24px; padding: 8px 16px; border-bottom: 1px solid #e0e0e0; flex-wrap: wrap; }
  header h1 { font-size: 16px; font-weight: 500; margin: 0; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; max-width: 40ch; }
  table.summary { border-collapse: collapse; font-size: 12px; }
  table.summary th { font-weight: 500; text-align: left; padding-right: 8px; color: #616161; }
  table.summary td { text-align: right; font-variant-numeric: tabular-nums; }
  nav.views { margin-left: auto; display: flex; gap: 4px; }
  nav.views button { font: inherit; font-size: 12px; padding: 4px 10px; border: 1px solid #bdbdbd; border-radius: 3px; background: white; cursor: pointer; }
  nav.views button.active { background: #e8eaf6; border-color: #3f51b5; }
  main { flex: 1; position: relative; margin: 8px; }
  .webtreemap-node { cursor: pointer; position: absolute; border: solid 1px #666; box-sizing: border-box; overflow: hidden; background: white; transition: left .15s, top .15s, width .15s, height .15s; }
  .webtreemap-caption { font-size: 11px; text-align: center; white-space: nowrap; overflow: hidden; text-overflow: ellipsis; padding: 0 2px; }
</style>
</head>
<body>
<header>
  <h1 title="{{.Title}}">{{.Title}}</h1>
  <table class="summary">
    <tr><th>Resource bytes</th><td>{{.Resource}}</td></tr>
    <tr><th>Unused bytes</th><td>{{.Unused}} ({{.UnusedPct}})</td></tr>
  </table>
  <table class="summary">
    <tr><th>Modules</th><td>{{.NodeCount}}</td></tr>
    {{if .DupCount}}<tr><th>Duplicate waste</th><td>{{.DupWaste}}</td></tr>{{end}}
  </table>
  <nav class="views">
    <button type="button" data-view="all">All</button>
    <button type="button" data-view="unused-bytes">Unused bytes</button>
    <button type="button" data-view="duplicate-modules">Duplicate modules</button>
  </nav>
</header>
<main id="treemap"></main>
<script>
const TREE = {{.Tree}};
const COLORS = {{.Colors}};
const DUPLICATES = {{.Duplicates}};
const INITIAL_VIEW = {{.InitialView}};
const LOCALE = {{.Locale}};

const FALLBACK = {background: 'white', text: 'black'};
const MARKER = 'node_modules/';
const dupSources = new Set(DUPLICATES.map(d => d.source));

function formatBytes(bytes) {
  const kib = bytes / 1024;
  return kib.toLocaleString(LOCALE, {minimumFractionDigits: 1, maximumFractionDigits: 1}) + ' KiB';
}

function dupKey(path) {
  const i = path.lastIndexOf(MARKER);
  return i < 0 ? null : path.slice(i);
}

// weigh sets node.size for the requested view. Branch weights are the sum
// of their leaves, so empty branches collapse away.
function weigh(node, view, path) {
  let size = 0;
  if (node.children && node.children.length) {
    for (const child of node.children) {
      size += weigh(child, view, path ? path + '/' + child.name : child.name);
    }
  } else if (view === 'unused-bytes') {
    size = node.unusedBytes || 0;
  } else if (view === 'duplicate-modules') {
    const key = dupKey(path);
    size = key && dupSources.has(key) ? (node.resourceBytes || 0) : 0;
  } else {
    size = node.resourceBytes || 0;
  }
  node.size = size;
  return size;
}

// paint pushes one bundle's precomputed color down its whole subtree. The
// assignment never changes between renders, so colors stay put.
function paint(node, color) {
  if (node.dom) {
    node.dom.style.backgroundColor = color.background;
    node.dom.style.color = color.text;
  }
  for (const child of node.children || []) paint(child, color);
}

function applyColors() {
  if (TREE.dom) {
    TREE.dom.style.backgroundColor = FALLBACK.background;
    TREE.dom.style.color = FALLBACK.text;
  }
  for (const child of TREE.children || []) {
    paint(child, COLORS[child.name] || FALLBACK);
  }
}

let currentView = INITIAL_VIEW;

function render(view) {
  currentView = view;
  weigh(TREE, view, '');
  const el = document.getElementById('treemap');
  el.innerHTML = '';
  const map = new webtreemap.TreeMap(TREE, {
    padding: [18, 3, 3, 3],
    caption: node => node.name + ' · ' + formatBytes(node.size),
  });
  map.render(el);
  applyColors();
  for (const btn of document.querySelectorAll('nav.views button')) {
    btn.classList.toggle('active', btn.dataset.view === view);
  }
}

for (const btn of document.querySelectorAll('nav.views button')) {
  btn.addEventListener('click', () => render(btn.dataset.view));
}
let resizePending = null;
window.addEventListener('resize', () => {
  clearTimeout(resizePending);
  resizePending = setTimeout(() => render(currentView), 100);
});
render(INITIAL_VIEW);
</script>
{{if .Options}}<script>window.__treemapOptions = {{.Options}};</script>
{{end}}{{if .LiveReload}}<script>
(function () {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const sock = new WebSocket(proto + '//' + location.host + {{.LiveReload}});
  sock.addEventListener('message', () => location.reload());
})();
</script>
{{end}}</body>
</html>
`
