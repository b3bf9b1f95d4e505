// Package facade is a typed client facade over a kv.Store.
//
// Every operation takes the *Connection it runs against; there is no
// package-level connection. Absence has two deliberately different shapes:
// GetString and the collection reads report a missing key as an absent or
// empty result, while AssertKeyExists turns it into a *KeyAssertionError.
//
// Store failures during data operations are logged and returned as
// *OperationError; failures to connect are returned as *ConnectionError.
// Nothing is retried.
//
//	f := facade.New(logger)
//	conn, err := f.Connect(ctx, facade.ConnectOptions{Host: "127.0.0.1"})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if _, err := f.SetString(ctx, conn, "greeting", "hello"); err != nil {
//		return err
//	}
//	value, ok, err := f.GetString(ctx, conn, "greeting")
package facade
