package markup

import "testing"

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"angle brackets", "&lt;b&gt;", "<b>"},
		{"quotes", "&quot;a&quot; &#39;b&#x27; &#34;c&#34;", `"a" 'b' "c"`},
		{"carriage return kept encoded", "a&#13;b", "a&#13;b"},
		{"decimal colon", "https&#58;//example.com", "https://example.com"},
		{"hex colon", "https&#x3A;//example.com", "https://example.com"},
		{"slashes", "a&#47;b&#x2F;c", "a/b/c"},
		{"space and equals", "a&#32;b&#61;c", "a b=c"},
		{"nbsp", "a&nbsp;b", "a b"},
		{"ampersand", "Tom &amp; Jerry", "Tom & Jerry"},
		{"escaped entity stays escaped", "&amp;lt;script&amp;gt;", "&lt;script&gt;"},
		{"double encoded colon stays encoded", "&amp;#58;", "&#58;"},
		{"unknown entity kept", "&#60;x&#62;", "&#60;x&#62;"},
		{"lone ampersand", "a & b", "a & b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEntities(tt.input); got != tt.want {
				t.Errorf("DecodeEntities(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeEntitiesSinglePass(t *testing.T) {
	once := DecodeEntities("&amp;amp;lt;")
	if once != "&amp;lt;" {
		t.Fatalf("first pass = %q, want %q", once, "&amp;lt;")
	}
	if twice := DecodeEntities(once); twice != "&lt;" {
		t.Errorf("second pass = %q, want %q", twice, "&lt;")
	}
}
