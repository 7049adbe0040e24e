/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: Text templates for run, holdout and reproducibility reports.
*/

package reporting

const reportTemplate = `{{define "entries"}}{{range .}}    [{{.Index}}] {{mark .}} expected={{.Expected}} observed={{.Observed}} size={{.Size}} {{.Label}}
{{end}}{{end}}{{define "words"}}{{range .}}  {{.CArray}}
    {{.Text}} ({{.Len}} bytes)
{{template "entries" .Entries}}{{end}}{{end}}{{define "patterns"}}{{range $i, $p := .}}  #{{$i}} {{$p.Class}} {{$p.Pattern}}
    literals: {{join $p.Literals " "}}  literal_len={{$p.LiteralLen}} gap_len={{$p.GapLen}}
{{template "entries" $p.Entries}}{{end}}{{end}}Run {{.RunID}}
Corpus: {{len .Entries}} documents, {{.TotalBytes}} bytes
{{range .Entries}}  [{{.Index}}] multiplicity={{.Expected}} size={{.Size}} {{.Label}}
{{end}}
{{if .NoMarker}}No marker found: no byte occurs often enough in every document.
{{else if and .Exhausted (eq .WordCount 0)}}Mining budget exhausted before the seed round finished: no words were checked.
{{else}}Mining: {{len .Rounds}} rounds, converged={{.Converged}} exhausted={{.Exhausted}}, {{.Archived}} words archived
{{if .Ambiguous}}Warning: more than one maximal exact anchor; inspect all of them.
{{end}}
Final words ({{.WordCount}}{{if lt (len .Words) .WordCount}}, first {{len .Words}} shown{{end}}):
{{template "words" .Words}}
Exact words ({{len .Exact}}):
{{template "words" .Exact}}
Longest exact round ({{len .LastExact}}):
{{template "words" .LastExact}}{{end}}{{with .Assembly}}
Assembly: vocabulary={{.VocabSize}} gaps={{.MinGap}}..{{.MaxGap}} fuzz={{.Fuzz}} space={{.SpaceSize}} evaluated={{.Evaluated}}/{{.Total}}{{if .Truncated}} truncated{{end}}{{if .Exhausted}} exhausted{{end}}

Good patterns ({{len .Good}}):
{{template "patterns" .Good}}
Part patterns ({{len .Part}}):
{{template "patterns" .Part}}{{end}}
Elapsed: {{.Elapsed}}
`

const holdoutTemplate = `Holdout run {{.RunID}} (leave {{.K}} out)
Baseline: word_len={{.Baseline.WordLen}} words={{.Baseline.Words}} exact={{len .Baseline.Exact}}{{if .Baseline.NoMarker}} no marker{{end}}
{{range .Baseline.Exact}}  {{.CArray}} {{.Text}}
{{end}}
{{range .Runs}}Without {{join .Excluded ", "}}: word_len={{.WordLen}} words={{.Words}} exact={{len .Exact}}{{if .Changed}} CHANGED{{end}}{{if .NoMarker}} no marker{{end}}{{if .Err}} ({{.Err}}){{end}}
{{range .Exact}}  {{.CArray}} {{.Text}}
{{end}}{{end}}
Stable exact words ({{len .Stable}}), runs differing from baseline: {{.Outliers}}
{{range .Stable}}  {{.CArray}} {{.Text}}
{{end}}`

const reproducibilityTemplate = `Reproducibility run {{.RunID}}
{{range $i, $a := .Attempts}}  #{{$i}} workers={{$a.Workers}} entry_parallel={{$a.EntryParallel}} words={{$a.Words}} exact={{$a.Exact}} patterns={{$a.Patterns}} fingerprint={{$a.Fingerprint}}{{if ne $a.Fingerprint $.Fingerprint}} MISMATCH{{end}} ({{$a.Elapsed}})
{{end}}
Reproducible: {{.Reproducible}} ({{percent .ReproductionRate}} of attempts match {{.Fingerprint}})
`
