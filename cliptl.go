// Package cliptl provides a clipboard-triggered translation pipeline.
//
// Text arrives from a trigger (a hotkey or a clipboard change), is filtered,
// translated by the active provider and shown in a transient popup. Every
// successful translation is stored in a content-addressed translation memory
// so repeated copies never reach the network twice.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/ZaguanLabs/cliptl"
//	    "github.com/ZaguanLabs/cliptl/cache"
//	    "github.com/ZaguanLabs/cliptl/popup"
//	    "github.com/ZaguanLabs/cliptl/provider"
//	)
//
//	func main() {
//	    store, err := cache.OpenSQLite(context.Background(), "translation_memory.db")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    memory := cache.New(store)
//
//	    // Create translator
//	    t := cliptl.NewTranslator("zh-TW", cliptl.Static(provider.NewGoogle(provider.GoogleConfig{})),
//	        cliptl.WithMemory(memory),
//	    )
//
//	    // One request at a time, shown in the terminal
//	    p := cliptl.NewPipeline(t, popup.NewController(popup.NewTerminalSink(os.Stdout)))
//	    p.Submit(cliptl.TranslationRequest{Text: "Hello world", SourceLang: cliptl.AutoLang}, cliptl.Point{})
//	    p.Wait()
//	}
package cliptl
