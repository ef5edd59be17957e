package sql

import (
	"testing"
)

func TestCheckLiteralValue(t *testing.T) {
	tests := []struct {
		name              string
		value             string
		expectUnsafe      bool
		expectFingerprint bool
	}{
		// Clean values - should pass
		{
			name:  "s3 prefix",
			value: "s3://udacity-dend/log_data",
		},
		{
			name:  "jsonpaths object",
			value: "s3://udacity-dend/log_json_path.json",
		},
		{
			name:  "iam role arn",
			value: "arn:aws:iam::123456789012:role/dwhRole",
		},
		{
			name:  "region",
			value: "us-west-2",
		},

		// Quote breaks out of the literal
		{
			name:         "embedded quote",
			value:        "s3://bucket/x' CREDENTIALS 'aws_iam_role=other",
			expectUnsafe: true,
		},

		// Injection patterns
		{
			name:              "union select",
			value:             "1 UNION SELECT * FROM passwords",
			expectUnsafe:      true,
			expectFingerprint: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckLiteralValue("key", tt.value)

			if !tt.expectUnsafe {
				if result != nil {
					t.Errorf("expected %q to be safe, got %+v", tt.value, result)
				}
				return
			}

			if result == nil {
				t.Fatalf("expected %q to be flagged", tt.value)
			}
			if result.Name != "key" {
				t.Errorf("expected Name=key, got %q", result.Name)
			}
			if tt.expectFingerprint && result.Fingerprint == "" {
				t.Error("expected a libinjection fingerprint")
			}
		})
	}
}

func TestCheckLiteralValues(t *testing.T) {
	values := map[string]string{
		"s3.song_data": "s3://udacity-dend/song_data",
		"s3.log_data":  "s3://bucket/it's",
		"iam_role.arn": "arn' OR '1'='1",
	}

	results := CheckLiteralValues(values)
	if len(results) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(results))
	}
	if results[0].Name != "iam_role.arn" || results[1].Name != "s3.log_data" {
		t.Errorf("expected failures sorted by name, got %q, %q", results[0].Name, results[1].Name)
	}
}

func TestCheckLiteralValues_AllClean(t *testing.T) {
	results := CheckLiteralValues(map[string]string{
		"s3.region": "us-west-2",
	})
	if len(results) != 0 {
		t.Errorf("expected no failures, got %d", len(results))
	}
}
