// Copyright (c) 2026 Soliton Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extract turns a leave email into candidate leave requests: it
// flattens the HTML body, builds the extraction prompt, calls the language
// model and coerces the model's JSON into leave.Request values.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	spaceAroundNL   = regexp.MustCompile(` *\n *`)
	manyNewlines    = regexp.MustCompile(`\n{3,}`)
)

// Normalize flattens an email body to plain text. Style and script blocks are
// dropped, <br> and </p> become line breaks, other tags are stripped and
// entities decoded. When content is empty the preview is returned as is.
func Normalize(content, preview string) string {
	if content == "" {
		return preview
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(content))
	skip := 0

loop:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Style, atom.Script:
				if tt == html.StartTagToken {
					skip++
				}
			case atom.Br:
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Style, atom.Script:
				if skip > 0 {
					skip--
				}
			case atom.P:
				sb.WriteByte('\n')
			}
		}
	}

	text := strings.ReplaceAll(sb.String(), "\u00a0", " ")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundNL.ReplaceAllString(text, "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
