package templates

const styles = `
body{font-family:system-ui,sans-serif;margin:0;color:#0f172a;background:#f8fafc}
nav{display:flex;gap:1rem;padding:1rem 2rem;background:#0f172a}
nav a{color:#e2e8f0;text-decoration:none}
main{max-width:72rem;margin:2rem auto;padding:0 1rem}
.toolbar{display:flex;flex-wrap:wrap;gap:1rem;margin-bottom:1rem;align-items:center}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:.5rem .75rem;border-bottom:1px solid #e2e8f0;text-align:left}
th.sortable{cursor:pointer}
tr.selected{background:#eff6ff}
td.editable{cursor:pointer}
.skeleton{height:1.25rem;border-radius:.25rem;background:#e2e8f0;animation:pulse 1.5s infinite}
@keyframes pulse{50%{opacity:.5}}
.footer{display:flex;justify-content:space-between;align-items:center;margin-top:1rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;color:#991b1b;padding:.75rem;border-radius:.375rem}
.field-error{color:#b91c1c;font-size:.875rem}
`

// htmxConfig lets error responses swap so alerts reach #alerts.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[2345]..","swap":true}]}`

// AlertsTarget is the element error partials are retargeted into.
const AlertsTarget = "#alerts"
