package codegen

import "fmt"

// Artifact selects which generated object to render.
type Artifact string

const (
	ArtifactCtrl  Artifact = "ctrl"
	ArtifactField Artifact = "field"
)

// Artifacts lists every artifact in render order.
var Artifacts = []Artifact{ArtifactCtrl, ArtifactField}

// ParseArtifacts accepts "ctrl", "field" or "both".
func ParseArtifacts(s string) ([]Artifact, error) {
	switch s {
	case "ctrl":
		return []Artifact{ArtifactCtrl}, nil
	case "field":
		return []Artifact{ArtifactField}, nil
	case "both", "":
		return Artifacts, nil
	default:
		return nil, fmt.Errorf("unknown artifact %q: must be ctrl, field or both", s)
	}
}

// ParseArtifact accepts "ctrl" or "field".
func ParseArtifact(s string) (Artifact, error) {
	switch Artifact(s) {
	case ArtifactCtrl, ArtifactField:
		return Artifact(s), nil
	default:
		return "", fmt.Errorf("unknown artifact %q: must be ctrl or field", s)
	}
}

// Placeholder names recognized in templates, written as {name}.
const (
	PlaceholderSignalName     = "signal_name"
	PlaceholderEncodingType   = "encoding_type"
	PlaceholderSignalWidth    = "signal_width"
	PlaceholderGenerationTime = "generation_time"
	PlaceholderValuesList     = "values_list"
	PlaceholderMethodsList    = "methods_list"
	PlaceholderValueMappings  = "value_mappings"
)

// DefaultTemplate returns the built-in template used when none is configured.
func DefaultTemplate(a Artifact) string {
	if a == ArtifactField {
		return defaultFieldTemplate
	}
	return defaultCtrlTemplate
}

// ExampleTemplate returns a commented starting point for custom templates.
func ExampleTemplate(a Artifact) string {
	if a == ArtifactField {
		return exampleFieldTemplate
	}
	return exampleCtrlTemplate
}

const defaultCtrlTemplate = `package rv.util.decoder.ctrl

import chisel3._
import chisel3.util._
import rv.util.CtrlEnum

object {signal_name} extends CtrlEnum(CtrlEnum.{encoding_type}) {
{values_list}
{methods_list}
}`

const defaultFieldTemplate = `package rv.util.decoder.field

import chisel3._
import chisel3.util._
import chisel3.util.experimental.decode._
import rv.util.decoder.InstPattern
import rv.util.decoder.ctrl.{signal_name}

object {signal_name}Field extends DecodeField[InstPattern, UInt] {
  override def name: String = "{signal_name}"

  override def chiselType: UInt = UInt({signal_width}.W)

  private val mappings: Seq[(Seq[String], {signal_name}.Type)] = Seq(
{value_mappings}
  )

  override def genTable(op: InstPattern): BitPat = {
    mappings.collectFirst {
      case (names, value) if names.contains(op.name) => BitPat(value.litValue.U({signal_width}.W))
    }.getOrElse(BitPat.dontCare({signal_width}))
  }
}`

const exampleCtrlTemplate = `// ===========================================
// Generated Chisel control signal enumeration
// Generated at: {generation_time}
// ===========================================

package rv.util.decoder.ctrl

import chisel3._
import chisel3.util._
import rv.util.CtrlEnum

/**
  * {signal_name} - control signal enumeration
  * Encoding: {encoding_type}
  * Width: {signal_width} bits
  */
object {signal_name} extends CtrlEnum(CtrlEnum.{encoding_type}) {
  // values
{values_list}

  // instruction classes
{methods_list}

  // helpers
  def getAllValues: Seq[UInt] = this.Values

  def getWidth: Int = {signal_width}
}`

const exampleFieldTemplate = `// ===========================================
// Generated Chisel decode field
// Generated at: {generation_time}
// ===========================================

package rv.util.decoder.field

import chisel3._
import chisel3.util._
import chisel3.util.experimental.decode._
import rv.util.decoder.InstPattern
import rv.util.decoder.ctrl.{signal_name}

/**
  * Decode field for {signal_name} ({encoding_type}, {signal_width} bits).
  */
object {signal_name}Field extends DecodeField[InstPattern, UInt] {
  override def name: String = "{signal_name}"

  override def chiselType: UInt = UInt({signal_width}.W)

  // instruction class -> enumeration member
  private val mappings: Seq[(Seq[String], {signal_name}.Type)] = Seq(
{value_mappings}
  )

  override def genTable(op: InstPattern): BitPat = {
    mappings.collectFirst {
      case (names, value) if names.contains(op.name) => BitPat(value.litValue.U({signal_width}.W))
    }.getOrElse(BitPat.dontCare({signal_width}))
  }
}`
