/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for skeleton reports. Self-contained page with no external
assets so reports can be archived next to the binaries they describe.
*/

package reporting

// reportTemplate is the HTML template for a single binary
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - cyskel report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #f4f5f7;
            color: #333;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }

        .header {
            background: #fff;
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 20px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .header h1 {
            color: #4a5568;
            font-size: 1.8rem;
            margin-bottom: 8px;
        }

        .header p {
            color: #718096;
            font-family: monospace;
        }

        .stats {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
            gap: 12px;
            margin-bottom: 20px;
        }

        .stat-card {
            background: #fff;
            border-radius: 12px;
            padding: 16px;
            text-align: center;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .stat-card .value {
            font-size: 1.6rem;
            font-weight: 700;
            color: #2d3748;
        }

        .stat-card .label {
            color: #718096;
            font-size: 0.85rem;
        }

        .panel {
            background: #fff;
            border-radius: 12px;
            padding: 20px;
            margin-bottom: 20px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .panel h2 {
            color: #4a5568;
            font-size: 1.2rem;
            margin-bottom: 12px;
        }

        ul {
            list-style: none;
            font-family: monospace;
        }

        li {
            padding: 2px 0;
        }

        .type {
            display: inline-block;
            min-width: 90px;
            font-weight: 600;
        }

        .type-package { color: #805ad5; }
        .type-module { color: #3182ce; }
        .type-class { color: #dd6b20; }
        .type-method { color: #38a169; }
        .type-unknown { color: #a0aec0; }

        .empty {
            color: #a0aec0;
            font-style: italic;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p id="source">{{.Source}}</p>
            <p>run {{.RunID}}{{if .Digest}} &middot; sha256 {{.Digest}}{{end}}</p>
            <p>analyzed {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        </div>

        <div class="stats">
            <div class="stat-card"><div class="value" id="candidates">{{.Candidates}}</div><div class="label">symbol paths</div></div>
            {{range .TypeCounts}}
            <div class="stat-card"><div class="value">{{.Count}}</div><div class="label">{{lower .Type}}</div></div>
            {{end}}
        </div>

        <div class="panel">
            <h2>Hierarchy</h2>
            <ul id="hierarchy">
                {{range .Lines}}
                <li class="entity type-{{lower .Type}}" data-path="{{.Path}}" data-depth="{{.Depth}}" style="padding-left: {{indent .Depth}}px"><span class="type">{{.Type}}</span> {{.Name}}</li>
                {{else}}
                <li class="empty">no symbols reconstructed</li>
                {{end}}
            </ul>
        </div>

        <div class="panel">
            <h2>Comments</h2>
            <ul id="comments">
                {{range .Comments}}<li class="item">{{.}}</li>{{else}}<li class="empty">none</li>{{end}}
            </ul>
        </div>

        <div class="panel">
            <h2>Shared libraries</h2>
            <ul id="libraries">
                {{range .SharedLibraries}}<li class="item">{{.}}</li>{{else}}<li class="empty">none</li>{{end}}
            </ul>
        </div>

        <div class="panel">
            <h2>Source files</h2>
            <ul id="sources">
                {{range .SourceFiles}}<li class="item">{{.}}</li>{{else}}<li class="empty">none</li>{{end}}
            </ul>
        </div>

        {{if .IncludeRaw}}
        <div class="panel">
            <h2>Strings</h2>
            <ul id="strings">
                {{range .RawStrings}}<li class="item">{{.}}</li>{{end}}
            </ul>
        </div>
        {{end}}
    </div>
</body>
</html>
`
