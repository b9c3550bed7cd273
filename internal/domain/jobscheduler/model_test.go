package jobscheduler

import "testing"

func TestResolveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scopes []ScopeResult
		want   RunStatus
	}{
		{name: "no scopes", want: StatusSucceeded},
		{name: "all ok", scopes: []ScopeResult{{Status: StatusSucceeded}, {Status: StatusSucceeded}}, want: StatusSucceeded},
		{name: "one failed", scopes: []ScopeResult{{Status: StatusSucceeded}, {Status: StatusFailed}}, want: StatusPartial},
		{name: "all failed", scopes: []ScopeResult{{Status: StatusFailed}}, want: StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveStatus(tt.scopes); got != tt.want {
				t.Fatalf("ResolveStatus()=%s want=%s", got, tt.want)
			}
		})
	}
}
