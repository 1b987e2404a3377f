package crypto

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/slonana-labs/slonana-go/common"
)

func TestAccount(t *testing.T) {
	account, err := GenerateAccount()
	if err != nil {
		t.Errorf("GenerateAccount Failed: %s", err.Error())
	}
	var pubFromPriv common.PublicKey
	copy(pubFromPriv[:], account.PrivateKey.Public().(ed25519.PublicKey))
	if account.PublicKey != pubFromPriv {
		t.Errorf("account pubkey not eq priv pubkey. Want: %s, Got: %s", account.PublicKey, pubFromPriv)
	}

	account2, err := AccountFromBytes(account.PrivateKey)
	if err != nil {
		t.Errorf("AccountFromBytes Failed: %s", err.Error())
	}
	if account.PublicKey != account2.PublicKey {
		t.Errorf("account pubkey not eq account2. Want: %s, Got: %s", account.PublicKey, account2.PublicKey)
	}

	account3, err := AccountFromSeed(account.PrivateKey.Seed())
	if err != nil {
		t.Errorf("AccountFromSeed Failed: %s", err.Error())
	}
	if account.PublicKey != account3.PublicKey {
		t.Errorf("account pubkey not eq account3. Want: %s, Got: %s", account.PublicKey, account3.PublicKey)
	}

	base58Key, err := GenerateBase58PrvKey(account)
	if err != nil {
		t.Errorf("GenerateBase58PrvKey Failed: %s", err.Error())
	}
	account4, err := AccountFromBase58Key(base58Key)
	if err != nil {
		t.Errorf("AccountFromBase58 Failed: %s", err.Error())
	}
	if account.PublicKey != account4.PublicKey {
		t.Errorf("account pubkey not eq account4. Want: %s, Got: %s", account.PublicKey, account4.PublicKey)
	}

	hexKey, err := GenerateHexPrvKey(account)
	if err != nil {
		t.Errorf("GenerateHexPrvKey Failed: %s", err.Error())
	}
	account5, err := AccountFromHexKey(hexKey)
	if err != nil {
		t.Errorf("AccountFromHex Failed: %s", err.Error())
	}
	if account.PublicKey != account5.PublicKey {
		t.Errorf("account pubkey not eq account5. Want: %s, Got: %s", account.PublicKey, account5.PublicKey)
	}

	mnemonic := "letter advice cage absurd amount doctor acoustic avoid letter advice cage above"
	account6, err := AccountFromMnemonic(mnemonic, "")
	if err != nil {
		t.Errorf("AccountFromMnemonic Failed: %s", err.Error())
	}
	fmt.Println("account6:", account6.PublicKey)

	msg := []byte("hello proof of history")
	sig := account.Sign(msg)
	if !Verify(account.PublicKey, msg, sig) {
		t.Errorf("Verify failed for a genuine signature")
	}
	if Verify(account.PublicKey, []byte("tampered"), sig) {
		t.Errorf("Verify succeeded for a tampered message")
	}
}
