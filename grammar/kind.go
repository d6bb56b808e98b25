package grammar

import "github.com/bitfsorg/libscan-go/chain"

// Kind identifies one recognized input grammar.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindBitPayInvoice
	KindPayPro
	KindBitcoinAddress
	KindBitcoinCashAddress
	KindEthereumAddress
	KindMaticAddress
	KindRippleAddress
	KindDogecoinAddress
	KindLitecoinAddress
	KindBitcoinURI
	KindBitcoinCashURI
	KindBitcoinCashLegacyURI
	KindEthereumURI
	KindMaticURI
	KindRippleURI
	KindDogecoinURI
	KindLitecoinURI
	KindWalletConnect
	KindBuyCrypto
	KindMoonpay
	KindRamp
	KindSardine
	KindSimplex
	KindWyre
	KindBitPayURI
	KindImportPrivateKey
	KindJoinCode
)

var kindNames = map[Kind]string{
	KindUnrecognized:         "Unrecognized",
	KindBitPayInvoice:        "BitPayInvoice",
	KindPayPro:               "PayPro",
	KindBitcoinAddress:       "BitcoinAddress",
	KindBitcoinCashAddress:   "BitcoinCashAddress",
	KindEthereumAddress:      "EthereumAddress",
	KindMaticAddress:         "MaticAddress",
	KindRippleAddress:        "RippleAddress",
	KindDogecoinAddress:      "DogecoinAddress",
	KindLitecoinAddress:      "LitecoinAddress",
	KindBitcoinURI:           "BitcoinURI",
	KindBitcoinCashURI:       "BitcoinCashURI",
	KindBitcoinCashLegacyURI: "BitcoinCashLegacyURI",
	KindEthereumURI:          "EthereumURI",
	KindMaticURI:             "MaticURI",
	KindRippleURI:            "RippleURI",
	KindDogecoinURI:          "DogecoinURI",
	KindLitecoinURI:          "LitecoinURI",
	KindWalletConnect:        "WalletConnect",
	KindBuyCrypto:            "BuyCrypto",
	KindMoonpay:              "Moonpay",
	KindRamp:                 "Ramp",
	KindSardine:              "Sardine",
	KindSimplex:              "Simplex",
	KindWyre:                 "Wyre",
	KindBitPayURI:            "BitPayURI",
	KindImportPrivateKey:     "ImportPrivateKey",
	KindJoinCode:             "JoinCode",
}

// String returns the grammar name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Family groups kinds by the shape of what they produce.
type Family int

const (
	FamilyUnrecognized Family = iota
	FamilyPlainAddress
	FamilyPaymentURI
	FamilyPaymentProtocolRef
	FamilyBitPayInvoiceRef
	FamilyWalletPairingURI
	FamilyBuyCryptoRedirect
	FamilyPartnerRedirect
	FamilyBitPayURI
	FamilyImportPrivateKey
	FamilyJoinMultisigCode
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyPlainAddress:
		return "PlainAddress"
	case FamilyPaymentURI:
		return "PaymentURI"
	case FamilyPaymentProtocolRef:
		return "PaymentProtocolRef"
	case FamilyBitPayInvoiceRef:
		return "BitPayInvoiceRef"
	case FamilyWalletPairingURI:
		return "WalletPairingURI"
	case FamilyBuyCryptoRedirect:
		return "BuyCryptoRedirect"
	case FamilyPartnerRedirect:
		return "PartnerRedirect"
	case FamilyBitPayURI:
		return "BitPayURI"
	case FamilyImportPrivateKey:
		return "ImportPrivateKey"
	case FamilyJoinMultisigCode:
		return "JoinMultisigCode"
	default:
		return "Unrecognized"
	}
}

// Family returns the family k belongs to.
func (k Kind) Family() Family {
	switch k {
	case KindBitPayInvoice:
		return FamilyBitPayInvoiceRef
	case KindPayPro:
		return FamilyPaymentProtocolRef
	case KindBitcoinAddress, KindBitcoinCashAddress, KindEthereumAddress, KindMaticAddress,
		KindRippleAddress, KindDogecoinAddress, KindLitecoinAddress:
		return FamilyPlainAddress
	case KindBitcoinURI, KindBitcoinCashURI, KindBitcoinCashLegacyURI, KindEthereumURI,
		KindMaticURI, KindRippleURI, KindDogecoinURI, KindLitecoinURI:
		return FamilyPaymentURI
	case KindWalletConnect:
		return FamilyWalletPairingURI
	case KindBuyCrypto:
		return FamilyBuyCryptoRedirect
	case KindMoonpay, KindRamp, KindSardine, KindSimplex, KindWyre:
		return FamilyPartnerRedirect
	case KindBitPayURI:
		return FamilyBitPayURI
	case KindImportPrivateKey:
		return FamilyImportPrivateKey
	case KindJoinCode:
		return FamilyJoinMultisigCode
	default:
		return FamilyUnrecognized
	}
}

// Chain returns the chain a plain-address or payment-URI kind belongs to,
// or "" for kinds not tied to one chain.
func (k Kind) Chain() string {
	switch k {
	case KindBitcoinAddress, KindBitcoinURI:
		return chain.BTC
	case KindBitcoinCashAddress, KindBitcoinCashURI, KindBitcoinCashLegacyURI:
		return chain.BCH
	case KindEthereumAddress, KindEthereumURI:
		return chain.ETH
	case KindMaticAddress, KindMaticURI:
		return chain.MATIC
	case KindRippleAddress, KindRippleURI:
		return chain.XRP
	case KindDogecoinAddress, KindDogecoinURI:
		return chain.DOGE
	case KindLitecoinAddress, KindLitecoinURI:
		return chain.LTC
	default:
		return ""
	}
}

// Partner returns the exchange partner of a redirect kind, or "".
func (k Kind) Partner() string {
	switch k {
	case KindMoonpay:
		return "moonpay"
	case KindRamp:
		return "ramp"
	case KindSardine:
		return "sardine"
	case KindSimplex:
		return "simplex"
	case KindWyre:
		return "wyre"
	default:
		return ""
	}
}
