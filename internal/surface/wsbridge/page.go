package wsbridge

// wrapperPage embeds the hosted frame in an iframe and relays traffic both
// ways: websocket commands become postMessage calls into the frame, and the
// frame's postMessage events are forwarded back over the websocket verbatim.
const wrapperPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>okcollect surface</title>
<style>
  html, body { margin: 0; height: 100%; background: #111; }
  #frame { border: 0; width: 100%; height: 100%; display: none; }
  #status { color: #888; font: 14px monospace; padding: 16px; }
</style>
</head>
<body>
<div id="status">waiting for session...</div>
<iframe id="frame"></iframe>
<script>
(function () {
  var frame = document.getElementById('frame');
  var status = document.getElementById('status');
  var ws = new WebSocket('ws://' + location.host + '/ws');

  ws.onmessage = function (ev) {
    var cmd = JSON.parse(ev.data);
    if (cmd.command === 'render') {
      frame.onload = function () {
        frame.contentWindow.postMessage({inject: cmd.script}, '*');
      };
      frame.src = cmd.url;
      frame.style.display = 'block';
      status.style.display = 'none';
    } else if (cmd.command === 'inject') {
      frame.contentWindow.postMessage({inject: cmd.script}, '*');
    } else if (cmd.command === 'hide') {
      frame.style.display = 'none';
      frame.src = 'about:blank';
      status.style.display = 'block';
      status.textContent = 'session ended';
    }
  };

  ws.onclose = function () {
    status.style.display = 'block';
    status.textContent = 'disconnected';
  };

  window.addEventListener('message', function (ev) {
    if (ev.source !== frame.contentWindow) {
      return;
    }
    var data = typeof ev.data === 'string' ? ev.data : JSON.stringify(ev.data);
    ws.send(data);
  });
})();
</script>
</body>
</html>
`
