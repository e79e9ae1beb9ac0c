package schedule

import (
	"fmt"
	"strings"
)

// SlotStep is the width of one display slot.
const SlotStep = 60

// SlotLabels returns the one-hour slot labels covering [dayStart, dayEnd),
// e.g. "06h-07h" ... "23h-00h". A dayEnd of Midnight is the end of the day.
func SlotLabels(dayStart, dayEnd Clock) []string {
	end := endMinutes(dayEnd)
	var labels []string
	for t := int(dayStart); t < end; t += SlotStep {
		next := (t + SlotStep) % minutesPerDay
		labels = append(labels, fmt.Sprintf("%02dh-%02dh", t/60, next/60))
	}
	return labels
}

// ParseSlotLabel turns a label such as "08h-09h" back into its window. The
// end of the last slot, "00h", is Midnight.
func ParseSlotLabel(label string) (start, end Clock, err error) {
	a, b, ok := strings.Cut(strings.TrimSpace(label), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid slot label %q", label)
	}
	if start, err = ParseLooseClock(a); err != nil {
		return 0, 0, fmt.Errorf("invalid slot label %q: %w", label, err)
	}
	if end, err = ParseLooseClock(b); err != nil {
		return 0, 0, fmt.Errorf("invalid slot label %q: %w", label, err)
	}
	if int(start) >= endMinutes(end) {
		return 0, 0, fmt.Errorf("invalid slot label %q: empty window", label)
	}
	return start, end, nil
}
