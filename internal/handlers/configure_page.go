package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/appcloud-project/decision-service/internal/service"
	"github.com/sirupsen/logrus"
)

var configureTemplate = template.Must(template.New("configure").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.ServiceName}} Configuration</title>
	<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body class="bg-light">
	<div class="container py-4">
		<div class="card shadow-sm mx-auto" style="max-width: 640px;">
			<div class="card-body">
				<h1 class="h3 mb-2">Configure {{.ServiceName}}</h1>
				<p class="text-muted">{{.ServiceDescription}}</p>
				<p><strong>Instance:</strong> <code>{{.InstanceID}}</code>
					{{if .Configured}}<span class="badge bg-success">Configured</span>
					{{else}}<span class="badge bg-warning">Needs Configuration</span>{{end}}</p>
				<form id="configForm">
					<div class="mb-3">
						<label for="rule" class="form-label">Decision Rule</label>
						<select id="rule" class="form-select">
							{{range .Rules}}<option value="{{.}}">{{.}}</option>
							{{end}}
						</select>
					</div>
					<div class="mb-3">
						<label for="ruleConfig" class="form-label">Rule Configuration (JSON)</label>
						<textarea id="ruleConfig" rows="8" class="form-control font-monospace"></textarea>
					</div>
					<div class="d-flex justify-content-end">
						<button type="button" class="btn btn-primary" onclick="saveConfiguration()">Save Configuration</button>
					</div>
					<div id="saveResult" class="form-text"></div>
				</form>
			</div>
		</div>
	</div>
	<script>
		const settings = {{.Settings}};
		document.getElementById('rule').value = settings.rule || 'email_domain';
		document.getElementById('ruleConfig').value = JSON.stringify(settings.config || {}, null, 2);

		async function saveConfiguration() {
			const result = document.getElementById('saveResult');
			let config;
			try {
				config = JSON.parse(document.getElementById('ruleConfig').value || '{}');
			} catch (err) {
				result.textContent = 'Invalid JSON: ' + err.message;
				return;
			}
			const body = { rule: document.getElementById('rule').value, config: config };
			const response = await fetch('configure?instanceId={{.InstanceID}}', {
				method: 'POST',
				headers: { 'Content-Type': 'application/json' },
				body: JSON.stringify(body)
			});
			if (response.ok) {
				result.textContent = 'Saved.';
				setTimeout(() => window.close(), 1500);
			} else {
				const problem = await response.json();
				result.textContent = 'Error: ' + (problem.detail || response.status);
			}
		}
	</script>
</body>
</html>
`))

type configurePageData struct {
	ServiceName        string
	ServiceDescription string
	InstanceID         string
	Configured         bool
	Rules              []string
	Settings           template.JS
}

func (h *Handler) renderConfigurePage(w http.ResponseWriter, instance *service.Instance) {
	settingsJSON, err := json.Marshal(instance.Settings)
	if err != nil {
		settingsJSON = []byte("{}")
	}

	data := configurePageData{
		ServiceName:        h.serviceName,
		ServiceDescription: h.serviceDesc,
		InstanceID:         instance.ID.String(),
		Configured:         instance.Configured,
		Rules:              h.ruleNames,
		Settings:           template.JS(settingsJSON),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := configureTemplate.Execute(w, data); err != nil {
		logrus.WithError(err).Error("Failed to render configure page")
	}
}
