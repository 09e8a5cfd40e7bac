//go:build !windows

package dialog

func platformNotifier() Notifier {
	return Writer{}
}
