// Package syncedstate keeps a user-editable value (theme, font settings,
// display mode) persisted locally on every change and mirrored to a cloud
// column in the background.
//
// Local writes happen before SetData returns. Cloud writes are debounced on
// the trailing edge, skipped while offline and retried on the next online
// transition or SyncNow. Cloud failures only change the container status.
//
// # Usage
//
//	theme := syncedstate.New(syncedstate.Options[string]{
//		LocalKey:    entities.SettingKeyTheme,
//		Table:       entities.TableUserSettings,
//		Column:      entities.ColumnTheme,
//		UserID:      session.UserID(),
//		SyncEnabled: true,
//		Default:     "light",
//		Local:       store,
//		Remote:      backend,
//		Online:      true,
//	})
//	<-theme.Start(ctx)
//	theme.SetData("dark")
package syncedstate
