/*
Package accountsdk is the wire contract of the accounts service and a small
Go client for it.

The request types carry validation rules, checked with Validate before a
request reaches business logic:

	req := accountsdk.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		AcceptTerms:     true,
	}
	if errs := req.Validate(); errs != nil {
		for field, msg := range errs {
			fmt.Printf("%s: %s\n", field, msg)
		}
	}

Client wraps every endpoint. Public flows need no token; account management
takes the bearer token returned by Authenticate:

	client := accountsdk.NewClient("https://accounts.example.com")
	auth, err := client.Authenticate(ctx, accountsdk.AuthenticateRequest{Email: email, Password: pw})
	if err != nil {
		return err
	}
	me, err := client.GetAccount(ctx, auth.JWTToken, auth.ID)

Failed calls return *APIError carrying the HTTP status, error code and, for
validation failures, per-field details.
*/
package accountsdk
