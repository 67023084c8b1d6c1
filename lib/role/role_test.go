// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package role

import "testing"

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		marker      string
		wantKind    Kind
		wantChannel string
	}{
		{
			name:     "no arguments",
			args:     nil,
			marker:   DefaultMarker,
			wantKind: Monitored,
		},
		{
			name:     "application arguments only",
			args:     []string{"/usr/bin/app", "--verbose", "input.txt"},
			marker:   DefaultMarker,
			wantKind: Monitored,
		},
		{
			name:        "marker with channel",
			args:        []string{"/usr/bin/app", "--crash-reporter-server=temp-socket-0123456789abcdef0123456789abcdef"},
			marker:      DefaultMarker,
			wantKind:    Supervisor,
			wantChannel: "temp-socket-0123456789abcdef0123456789abcdef",
		},
		{
			name:        "path channel",
			args:        []string{"app", "--crash-reporter-server=/tmp/temp-socket-ab"},
			marker:      DefaultMarker,
			wantKind:    Supervisor,
			wantChannel: "/tmp/temp-socket-ab",
		},
		{
			name:        "custom marker",
			args:        []string{"app", "--watchdog=x"},
			marker:      "--watchdog",
			wantKind:    Supervisor,
			wantChannel: "x",
		},
		{
			name:     "default marker ignored under custom marker",
			args:     []string{"app", "--crash-reporter-server=x"},
			marker:   "--watchdog",
			wantKind: Monitored,
		},
		{
			name:        "first marker wins",
			args:        []string{"app", "--crash-reporter-server=first", "--crash-reporter-server=second"},
			marker:      DefaultMarker,
			wantKind:    Supervisor,
			wantChannel: "first",
		},
		{
			name:        "last separator splits",
			args:        []string{"app", "--crash-reporter-server=a=b"},
			marker:      DefaultMarker,
			wantKind:    Supervisor,
			wantChannel: "b",
		},
		{
			name:     "marker must be a prefix",
			args:     []string{"app", "x--crash-reporter-server=y"},
			marker:   DefaultMarker,
			wantKind: Monitored,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Select(test.args, test.marker)
			if got.Kind != test.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, test.wantKind)
			}
			if got.ChannelName != test.wantChannel {
				t.Errorf("ChannelName = %q, want %q", got.ChannelName, test.wantChannel)
			}
			if IsSupervisor(test.args, test.marker) != (test.wantKind == Supervisor) {
				t.Errorf("IsSupervisor disagrees with Select")
			}
		})
	}
}

func TestArgumentRoundTrip(t *testing.T) {
	argument := Argument(DefaultMarker, "temp-socket-ff")
	if argument != "--crash-reporter-server=temp-socket-ff" {
		t.Fatalf("Argument = %q", argument)
	}
	got := Select([]string{"app", argument}, DefaultMarker)
	if got.Kind != Supervisor || got.ChannelName != "temp-socket-ff" {
		t.Errorf("Select(Argument(...)) = %+v", got)
	}
}

func TestKindString(t *testing.T) {
	if Monitored.String() != "monitored" || Supervisor.String() != "supervisor" {
		t.Errorf("Kind strings = %q, %q", Monitored, Supervisor)
	}
}
