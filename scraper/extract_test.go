package scraper

import (
	"testing"
)

const resultPage = `<html><body>
<div class="parts-search__result">
  <table class="parts-search__result__table">
    <tbody>
      <tr>
        <td>1</td>
        <td>  NISSAN
            MOTOR   CO </td>
        <td> 12.5kg </td>
        <td> $45.00 </td>
      </tr>
      <tr>
        <td>2</td><td>OTHER MAKER</td><td>1kg</td><td>$9.99</td>
      </tr>
    </tbody>
  </table>
</div>
</body></html>`

const nothingFoundPage = `<html><body>
<div class="parts-search__result__nothing"><strong>Nothing found!</strong></div>
</body></html>`

func TestExtractOEMFields_FirstRow(t *testing.T) {
	fields, err := ExtractOEMFields(resultPage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields == nil {
		t.Fatal("expected fields, got nil")
	}

	if fields.Maker != "NISSAN MOTOR CO" {
		t.Errorf("maker whitespace not collapsed: %q", fields.Maker)
	}
	if fields.Weight != "12.5kg" {
		t.Errorf("weight = %q, want %q", fields.Weight, "12.5kg")
	}
	if fields.Price != "$45.00" {
		t.Errorf("price = %q, want %q", fields.Price, "$45.00")
	}
}

func TestExtractOEMFields_NothingFound(t *testing.T) {
	fields, err := ExtractOEMFields(nothingFoundPage)
	if err != nil {
		t.Fatalf("nothing-found marker should not be an error, got: %v", err)
	}
	if fields != nil {
		t.Errorf("expected nil fields for nothing-found page, got %+v", fields)
	}
}

func TestExtractOEMFields_Malformed(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			"no table",
			`<html><body><div class="parts-search__result"></div></body></html>`,
		},
		{
			"empty table",
			`<html><body><table class="parts-search__result__table"><tbody></tbody></table></body></html>`,
		},
		{
			"too few cells",
			`<html><body><table class="parts-search__result__table"><tbody>
			<tr><td>1</td><td>MAKER</td><td>2kg</td></tr>
			</tbody></table></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ExtractOEMFields(tt.html)
			if err == nil {
				t.Errorf("expected extraction error, got fields %+v", fields)
			}
		})
	}
}

func TestExtractOEMFields_BareRowsGetImplicitTbody(t *testing.T) {
	// The HTML parser inserts tbody for bare tr elements; extraction
	// must still find the first row.
	page := `<html><body><table class="parts-search__result__table">
	<tr><td>1</td><td>MAZDA</td><td>3kg</td><td>$10.00</td></tr>
	</table></body></html>`

	fields, err := ExtractOEMFields(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Maker != "MAZDA" {
		t.Errorf("maker = %q, want %q", fields.Maker, "MAZDA")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  NISSAN   MOTOR ", "NISSAN MOTOR"},
		{"A\nB\tC", "A B C"},
		{"plain", "plain"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := collapseWhitespace(tt.in); got != tt.want {
			t.Errorf("collapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
