package web

const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 2em auto; max-width: 44em; font-family: sans-serif }
textarea { width: 100%; height: 6em }
.notice { color: #225 }
.warning { color: #a50 }
.hidden { display: none }
</style>
<script>
window.addEventListener("load", function(evt) {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    var $ = function(id) { return document.getElementById(id); };

    var send = function(ev) {
        if (ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(ev));
        }
    };

    var render = function(v) {
        document.querySelectorAll("input[name=mode]").forEach(function(r) {
            r.checked = (r.value === v.mode);
        });
        $("text-input").classList.toggle("hidden", v.mode !== "text");
        $("speech-input").classList.toggle("hidden", v.mode !== "speech" || !v.micEnabled);
        if ($("upload")) {
            $("upload").classList.toggle("hidden", v.mode !== "speech");
        }
        $("start").disabled = v.busy || v.recording;
        $("stop").disabled = v.busy;
        $("notice").textContent = v.notice || "";
        $("warning").textContent = v.warning || "";
        $("transcript-box").classList.toggle("hidden", v.mode !== "speech" || !v.transcript);
        $("transcript").value = v.transcript || "";
        $("reply-box").classList.toggle("hidden", !v.reply);
        $("reply").value = v.reply || "";
    };

    ws.onmessage = function(evt) { render(JSON.parse(evt.data)); };
    ws.onclose = function(evt) { $("warning").textContent = "Disconnected. Reload the page."; };

    document.querySelectorAll("input[name=mode]").forEach(function(r) {
        r.onchange = function() { send({type: "mode", mode: r.value}); };
    });
    $("text-input").onsubmit = function(evt) {
        evt.preventDefault();
        send({type: "text", text: $("you").value});
    };
    $("start").onclick = function() { send({type: "start"}); };
    $("stop").onclick = function() { send({type: "stop"}); };

    var upload = $("upload");
    if (upload) {
        upload.onsubmit = function(evt) {
            evt.preventDefault();
            $("notice").textContent = "Transcribing...";
            fetch("/api/transcribe", {method: "POST", body: new FormData(upload)})
                .then(function(r) { return r.json(); })
                .then(function(v) {
                    $("notice").textContent = "";
                    $("warning").textContent = v.error || "";
                    $("transcript-box").classList.toggle("hidden", !v.transcript);
                    $("transcript").value = v.transcript || "";
                    $("reply-box").classList.toggle("hidden", !v.reply);
                    $("reply").value = v.reply || "";
                });
        };
    }
});
</script>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Talk or type to chat with the bot.</p>

<fieldset>
<legend>Choose input type:</legend>
<label><input type="radio" name="mode" value="text" checked> Text</label>
<label><input type="radio" name="mode" value="speech"> Speech</label>
</fieldset>

<form id="text-input">
<label>You: <input id="you" type="text" size="60" autocomplete="off"></label>
<button type="submit">Send</button>
</form>

<div id="speech-input" class="hidden">
<button id="start" type="button">Start Recording</button>
<button id="stop" type="button">Stop Recording</button>
</div>
{{if .Upload}}
<form id="upload" class="hidden">
<label>or upload audio: <input type="file" name="audio" accept="audio/*"></label>
<button type="submit">Transcribe</button>
</form>
{{end}}
{{if not .MicEnabled}}<noscript>Microphone input is disabled on this host.</noscript>{{end}}

<p id="notice" class="notice"></p>
<p id="warning" class="warning"></p>

<div id="transcript-box" class="hidden">
<label>Transcribed Text:<br><textarea id="transcript" readonly></textarea></label>
</div>
<div id="reply-box" class="hidden">
<label>Bot says:<br><textarea id="reply" readonly></textarea></label>
</div>
</body>
</html>
`
