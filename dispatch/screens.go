package dispatch

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libscan-go/grammar"
	"github.com/bitfsorg/libscan-go/paypro"
)

// Navigation stacks.
const (
	StackWallet                   = "Wallet"
	StackAuth                     = "Auth"
	StackTabs                     = "Tabs"
	StackWalletConnect            = "WalletConnect"
	StackBuyCrypto                = "BuyCrypto"
	StackExternalServicesSettings = "ExternalServicesSettings"
)

// Screens.
const (
	ScreenGlobalSelect            = "GlobalSelect"
	ScreenConfirm                 = "Confirm"
	ScreenAmount                  = "Amount"
	ScreenPayProConfirm           = "PayProConfirm"
	ScreenEnterBuyerProvidedEmail = "EnterBuyerProvidedEmail"
	ScreenLogin                   = "Login"
	ScreenHome                    = "Home"
	ScreenWalletDetails           = "WalletDetails"
	ScreenImport                  = "Import"
	ScreenJoinMultisig            = "JoinMultisig"
	ScreenKeyGlobalSelect         = "KeyGlobalSelect"
	ScreenRoot                    = "Root"
	ScreenBuyCryptoRoot           = "BuyCryptoRoot"
)

// GlobalSelectContextScanner marks wallet selection started by a scan.
const GlobalSelectContextScanner = "scanner"

// RecipientOpts travel with the recipient into wallet selection.
type RecipientOpts struct {
	ShowEVMWalletsAndTokens bool
	Message                 string
	FeeRate                 *big.Int
}

// GlobalSelectParams opens the wallet picker.
type GlobalSelectParams struct {
	Context   string
	Recipient grammar.Recipient
	Opts      RecipientOpts
	Amount    *big.Int
}

// ConfirmParams opens the send confirmation.
type ConfirmParams struct {
	Wallet    *Wallet
	Recipient grammar.Recipient
	Proposal  *Proposal
	Amount    *big.Int
	Message   string
	SendMax   bool
}

// AmountSelected continues a payment once the user entered an amount.
type AmountSelected func(ctx context.Context, amount *big.Int, sendMax bool)

// AmountParams opens amount entry.
type AmountParams struct {
	SendMaxEnabled             bool
	CryptoCurrencyAbbreviation string
	Chain                      string
	OnAmountSelected           AmountSelected
}

// PayProConfirmParams opens the payment-protocol confirmation.
type PayProConfirmParams struct {
	PayProOptions *paypro.PaymentOptions
	Invoice       *paypro.Invoice
	Wallet        *Wallet
}

// EnterBuyerProvidedEmailParams asks for the buyer email of a gated invoice.
type EnterBuyerProvidedEmailParams struct {
	Data string
}

// LoginParams opens login with a continuation run on success.
type LoginParams struct {
	OnLoginSuccess func()
}

// WalletDetailsParams opens a wallet.
type WalletDetailsParams struct {
	WalletID string
}

// ImportParams opens key import.
type ImportParams struct {
	ImportQRCodeData string
}

// JoinMultisigParams opens the multisig join screen.
type JoinMultisigParams struct {
	Key            *Key
	InvitationCode string
}

// KeyGlobalSelectParams opens the key picker.
type KeyGlobalSelectParams struct {
	OnKeySelect func(Key)
}

// WalletConnectParams opens the WalletConnect root screen.
type WalletConnectParams struct {
	URI string
}

// BuyCryptoParams opens the buy-crypto flow preset.
type BuyCryptoParams struct {
	Partner              string
	Amount               *decimal.Decimal
	CurrencyAbbreviation string
	Chain                string
}
