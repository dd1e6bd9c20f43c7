package msgspec

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Context holds message and service definitions by full name. Specs are
// parsed and hashed on first use, so definitions may be registered in any
// order.
type Context struct {
	mu       sync.RWMutex
	msgTexts map[string]string
	srvTexts map[string]string
	msgs     map[string]*MsgSpec
	srvs     map[string]*SrvSpec
}

func NewContext() *Context {
	return &Context{
		msgTexts: make(map[string]string),
		srvTexts: make(map[string]string),
		msgs:     make(map[string]*MsgSpec),
		srvs:     make(map[string]*SrvSpec),
	}
}

// Default is the context the msgs packages register into.
var Default = NewContext()

func (ctx *Context) RegisterMsg(fullname string, text string) {
	ctx.mu.Lock()
	ctx.msgTexts[fullname] = text
	delete(ctx.msgs, fullname)
	ctx.mu.Unlock()
}

// RegisterSrv registers a service along with its <Name>Request and
// <Name>Response messages.
func (ctx *Context) RegisterSrv(fullname string, text string) error {
	reqText, resText, err := splitSrv(text, fullname)
	if err != nil {
		return err
	}
	ctx.mu.Lock()
	ctx.srvTexts[fullname] = text
	delete(ctx.srvs, fullname)
	ctx.mu.Unlock()
	ctx.RegisterMsg(fullname+"Request", reqText)
	ctx.RegisterMsg(fullname+"Response", resText)
	return nil
}

func (ctx *Context) LoadMsg(fullname string) (*MsgSpec, error) {
	ctx.mu.RLock()
	spec, ok := ctx.msgs[fullname]
	text, known := ctx.msgTexts[fullname]
	ctx.mu.RUnlock()
	if ok {
		return spec, nil
	}
	if !known {
		return nil, fmt.Errorf("message definition of `%s` is not found", fullname)
	}

	spec, err := ctx.LoadMsgFromString(text, fullname)
	if err != nil {
		return nil, err
	}
	ctx.mu.Lock()
	ctx.msgs[fullname] = spec
	ctx.mu.Unlock()
	return spec, nil
}

// LoadMsgFromString parses text and computes its MD5. Sub-messages must be
// registered in ctx.
func (ctx *Context) LoadMsgFromString(text string, fullname string) (*MsgSpec, error) {
	spec, err := parseMsg(text, fullname)
	if err != nil {
		return nil, err
	}
	md5sum, err := ctx.ComputeMsgMD5(spec)
	if err != nil {
		return nil, err
	}
	spec.MD5Sum = md5sum
	return spec, nil
}

func (ctx *Context) LoadSrv(fullname string) (*SrvSpec, error) {
	ctx.mu.RLock()
	spec, ok := ctx.srvs[fullname]
	text, known := ctx.srvTexts[fullname]
	ctx.mu.RUnlock()
	if ok {
		return spec, nil
	}
	if !known {
		return nil, fmt.Errorf("service definition of `%s` is not found", fullname)
	}

	spec, err := ctx.LoadSrvFromString(text, fullname)
	if err != nil {
		return nil, err
	}
	ctx.mu.Lock()
	ctx.srvs[fullname] = spec
	ctx.mu.Unlock()
	return spec, nil
}

func (ctx *Context) LoadSrvFromString(text string, fullname string) (*SrvSpec, error) {
	packageName, shortName, err := packageResourceName(fullname)
	if err != nil {
		return nil, err
	}
	reqText, resText, err := splitSrv(text, fullname)
	if err != nil {
		return nil, err
	}
	reqSpec, err := ctx.LoadMsgFromString(reqText, fullname+"Request")
	if err != nil {
		return nil, errors.Wrap(err, "request")
	}
	resSpec, err := ctx.LoadMsgFromString(resText, fullname+"Response")
	if err != nil {
		return nil, errors.Wrap(err, "response")
	}

	spec := &SrvSpec{
		Package:   packageName,
		ShortName: shortName,
		FullName:  fullname,
		Text:      text,
		Request:   reqSpec,
		Response:  resSpec,
	}
	if spec.MD5Sum, err = ctx.ComputeSrvMD5(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// ComputeMD5Text builds the canonical text hashed for a message: constants
// first, then builtin fields as declared and complex fields replaced by the
// MD5 of their type.
func (ctx *Context) ComputeMD5Text(spec *MsgSpec) (string, error) {
	var buf bytes.Buffer
	for _, c := range spec.Constants {
		buf.WriteString(c.String())
		buf.WriteString("\n")
	}
	for _, f := range spec.Fields {
		if f.IsBuiltin {
			buf.WriteString(f.String())
			buf.WriteString("\n")
			continue
		}
		subspec, err := ctx.LoadMsg(f.FullType())
		if err != nil {
			return "", errors.Wrapf(err, "field %s of %s", f.Name, spec.FullName)
		}
		fmt.Fprintf(&buf, "%s %s\n", subspec.MD5Sum, f.Name)
	}
	return strings.Trim(buf.String(), "\n"), nil
}

func (ctx *Context) ComputeMsgMD5(spec *MsgSpec) (string, error) {
	text, err := ctx.ComputeMD5Text(spec)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:]), nil
}

func (ctx *Context) ComputeSrvMD5(spec *SrvSpec) (string, error) {
	reqText, err := ctx.ComputeMD5Text(spec.Request)
	if err != nil {
		return "", err
	}
	resText, err := ctx.ComputeMD5Text(spec.Response)
	if err != nil {
		return "", err
	}
	hash := md5.New()
	hash.Write([]byte(reqText))
	hash.Write([]byte(resText))
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// MustMsgMD5 returns the MD5 of a message registered in Default and panics
// if the definition is missing or malformed.
func MustMsgMD5(fullname string) string {
	spec, err := Default.LoadMsg(fullname)
	if err != nil {
		panic(err)
	}
	return spec.MD5Sum
}

// MustSrvMD5 is MustMsgMD5 for services.
func MustSrvMD5(fullname string) string {
	spec, err := Default.LoadSrv(fullname)
	if err != nil {
		panic(err)
	}
	return spec.MD5Sum
}

// MustRegisterSrv registers into Default and panics on malformed text.
func MustRegisterSrv(fullname string, text string) {
	if err := Default.RegisterSrv(fullname, text); err != nil {
		panic(err)
	}
}
