package solana

import (
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// Seeds of the bridge and token bridge program derived addresses.
var (
	seedBridgeConfig    = []byte("Bridge")
	seedPortalConfig    = []byte("config")
	seedCustodySigner   = []byte("custody_signer")
	seedAuthoritySigner = []byte("authority_signer")
	seedEmitter         = []byte("emitter")
	seedSequence        = []byte("Sequence")
	seedFeeCollector    = []byte("fee_collector")
)

// BridgeAccounts are the program derived addresses a native token transfer
// through the bridge touches.
type BridgeAccounts struct {
	WormholeConfig       solana.PublicKey
	TokenBridgeConfig    solana.PublicKey
	Custody              solana.PublicKey
	CustodySigner        solana.PublicKey
	AuthoritySigner      solana.PublicKey
	WormholeEmitter      solana.PublicKey
	WormholeSequence     solana.PublicKey
	WormholeFeeCollector solana.PublicKey
}

// DeriveBridgeAccounts derives the bridge accounts for transfers of mint.
func DeriveBridgeAccounts(bridge, portal, mint solana.PublicKey) (*BridgeAccounts, error) {
	var (
		out BridgeAccounts
		err error
	)
	derive := func(dst *solana.PublicKey, name string, program solana.PublicKey, seeds ...[]byte) {
		if err != nil {
			return
		}
		if *dst, _, err = solana.FindProgramAddress(seeds, program); err != nil {
			err = fmt.Errorf("failed to derive %s: %w", name, err)
		}
	}

	derive(&out.WormholeConfig, "bridge config", bridge, seedBridgeConfig)
	derive(&out.TokenBridgeConfig, "token bridge config", portal, seedPortalConfig)
	derive(&out.Custody, "custody", portal, mint.Bytes())
	derive(&out.CustodySigner, "custody signer", portal, seedCustodySigner)
	derive(&out.AuthoritySigner, "authority signer", portal, seedAuthoritySigner)
	derive(&out.WormholeEmitter, "emitter", portal, seedEmitter)
	if err != nil {
		return nil, err
	}
	derive(&out.WormholeSequence, "sequence", bridge, seedSequence, out.WormholeEmitter.Bytes())
	derive(&out.WormholeFeeCollector, "fee collector", bridge, seedFeeCollector)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AssociatedTokenAccount returns owner's associated token account for mint.
func AssociatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return ata, nil
}

// TransferAccounts lists the accounts of propeller_transfer_native_with_payload
// in instruction order.
type TransferAccounts struct {
	Propeller      solana.PublicKey
	Payer          solana.PublicKey
	Wormhole       solana.PublicKey
	UserSwimUSDATA solana.PublicKey
	SwimUSDMint    solana.PublicKey
	TokenBridge    solana.PublicKey
	Message        solana.PublicKey
	Bridge         *BridgeAccounts
}

func (a *TransferAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(a.Propeller),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(a.Payer).WRITE().SIGNER(),
		solana.Meta(a.Wormhole),
		solana.Meta(a.Bridge.TokenBridgeConfig),
		solana.Meta(a.UserSwimUSDATA).WRITE(),
		solana.Meta(a.SwimUSDMint).WRITE(),
		solana.Meta(a.Bridge.Custody).WRITE(),
		solana.Meta(a.TokenBridge),
		solana.Meta(a.Bridge.CustodySigner),
		solana.Meta(a.Bridge.AuthoritySigner),
		solana.Meta(a.Bridge.WormholeConfig).WRITE(),
		solana.Meta(a.Message).WRITE().SIGNER(),
		solana.Meta(a.Bridge.WormholeEmitter),
		solana.Meta(a.Bridge.WormholeSequence).WRITE(),
		solana.Meta(a.Bridge.WormholeFeeCollector).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SystemProgramID),
	}
}

// AddAccounts lists the accounts of propeller_add in instruction order.
type AddAccounts struct {
	Propeller         solana.PublicKey
	PoolTokens        [2]solana.PublicKey
	LPMint            solana.PublicKey
	GovernanceFee     solana.PublicKey
	TransferAuthority solana.PublicKey
	UserTokens        [2]solana.PublicKey
	UserLPToken       solana.PublicKey
	TwoPool           solana.PublicKey
}

func (a *AddAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(a.Propeller),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(a.PoolTokens[0]).WRITE(),
		solana.Meta(a.PoolTokens[1]).WRITE(),
		solana.Meta(a.LPMint).WRITE(),
		solana.Meta(a.GovernanceFee).WRITE(),
		solana.Meta(a.TransferAuthority).SIGNER(),
		solana.Meta(a.UserTokens[0]).WRITE(),
		solana.Meta(a.UserTokens[1]).WRITE(),
		solana.Meta(a.UserLPToken).WRITE(),
		solana.Meta(a.TwoPool),
	}
}
