package server

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>watchsweep</title></head>
<body>
<h1>watchsweep</h1>
<p>Keeps Plex watchlists in step with your curated collections.</p>
<p><a href="/login">Authorize a Plex account</a></p>
</body>
</html>`

const retryHTML = `<!DOCTYPE html>
<html>
<head><title>watchsweep</title></head>
<body>
<h1>Not authorized yet</h1>
<p>Plex has not confirmed the authorization. Finish the approval in the
Plex window, then reload this page.</p>
</body>
</html>`

const thanksHTML = `<!DOCTYPE html>
<html>
<head><title>watchsweep</title></head>
<body>
<h1>All set</h1>
<p>Account <strong>%s</strong> is now registered. You can close this window.</p>
</body>
</html>`
